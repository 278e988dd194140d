package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"flcs-chatbot-be/internal/bootstrap"
	"flcs-chatbot-be/internal/config"
	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/pkg/database"
	"flcs-chatbot-be/pkg/dialogue"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

// chatFunc sends one message and returns the reply envelope.
type chatFunc func(ctx context.Context, message string) (dialogue.Envelope, error)

func main() {
	var remote string

	cmd := &cobra.Command{
		Use:          "simulation",
		Short:        "Chat with the FLCS assistant from the terminal",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			repl(cmd.Context(), remote)
		},
	}
	cmd.Flags().StringVar(&remote, "url", "", "base URL of a running server (e.g. http://localhost:5000); empty drives the dialogue in-process")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func repl(ctx context.Context, remote string) {
	var chat chatFunc
	if remote != "" {
		chat = remoteChat(strings.TrimRight(remote, "/"))
		color.Cyan("FLCS chat simulation against %s\n", remote)
	} else {
		chat = localChat(ctx)
		color.Cyan("FLCS chat simulation (in-process)\n")
	}
	fmt.Println("Type a message, or 'quit!' to leave. Buttons are shown in yellow.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYOU: ")
		if !scanner.Scan() {
			return
		}
		text := scanner.Text()
		if text == "quit!" {
			return
		}

		start := time.Now()
		env, err := chat(ctx, text)
		elapsed := time.Since(start)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		printEnvelope(env, elapsed)
	}
}

func printEnvelope(env dialogue.Envelope, elapsed time.Duration) {
	color.Green("BOT (%v):", elapsed.Round(time.Millisecond))
	fmt.Println(env.Markdown)
	if len(env.Buttons) > 0 {
		color.Yellow("[ %s ]", strings.Join(env.Buttons, " | "))
	}
	if env.Error != "" {
		color.Red("error code: %s", env.Error)
	}
}

// localChat wires the same container the server uses and keeps one session
// in memory.
func localChat(ctx context.Context) chatFunc {
	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger(zapcore.WarnLevel)

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Printf("Info: no database (%v), pgvector and postgres records disabled", err)
	}

	container := bootstrap.NewContainer(db, cfg, sysLogger)
	if err := container.Start(ctx); err != nil {
		log.Fatalf("Failed to start background services: %v", err)
	}

	sessionID := uuid.NewString()
	return func(ctx context.Context, message string) (dialogue.Envelope, error) {
		return container.ChatService.Chat(ctx, sessionID, message)
	}
}

// remoteChat posts to /api/chat, keeping the session cookie between turns.
func remoteChat(baseURL string) chatFunc {
	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: time.Minute}

	return func(ctx context.Context, message string) (dialogue.Envelope, error) {
		body, _ := json.Marshal(map[string]string{"query": message})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/chat", bytes.NewReader(body))
		if err != nil {
			return dialogue.Envelope{}, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return dialogue.Envelope{}, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return dialogue.Envelope{}, err
		}
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
			return dialogue.Envelope{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
		}

		var env dialogue.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return dialogue.Envelope{}, fmt.Errorf("decode reply: %w", err)
		}
		return env, nil
	}
}
