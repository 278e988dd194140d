package dialogue

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenuYAML []byte

type menuEntry struct {
	Keywords []string `yaml:"keywords"`
	Markdown string   `yaml:"markdown"`
	Buttons  []string `yaml:"buttons"`
}

type menuDocument struct {
	Welcome       string      `yaml:"welcome"`
	MainMenu      []string    `yaml:"main_menu"`
	CancelButtons []string    `yaml:"cancel_buttons"`
	Entries       []menuEntry `yaml:"entries"`
}

// MenuTable maps a normalized keyword to a fixed reply. It is read-only once
// loaded and safe for concurrent use.
type MenuTable struct {
	welcome       string
	mainMenu      []string
	cancelButtons []string
	entries       map[string]Envelope
}

// LoadMenu parses a menu document. Keywords are normalized on load and must
// be unique across entries.
func LoadMenu(data []byte) (*MenuTable, error) {
	var doc menuDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if strings.TrimSpace(doc.Welcome) == "" {
		return nil, errors.New("menu: welcome text is required")
	}
	if len(doc.MainMenu) == 0 {
		return nil, errors.New("menu: main_menu must not be empty")
	}

	table := &MenuTable{
		welcome:       doc.Welcome,
		mainMenu:      doc.MainMenu,
		cancelButtons: doc.CancelButtons,
		entries:       make(map[string]Envelope),
	}
	for i, entry := range doc.Entries {
		if len(entry.Keywords) == 0 {
			return nil, fmt.Errorf("menu: entry %d has no keywords", i)
		}
		for _, kw := range entry.Keywords {
			key := Normalize(kw)
			if key == "" {
				return nil, fmt.Errorf("menu: entry %d has an empty keyword", i)
			}
			if _, dup := table.entries[key]; dup {
				return nil, fmt.Errorf("menu: duplicate keyword %q", key)
			}
			table.entries[key] = NewEnvelope(entry.Markdown, entry.Buttons)
		}
	}
	return table, nil
}

// DefaultMenu returns the embedded menu copy.
func DefaultMenu() *MenuTable {
	table, err := LoadMenu(defaultMenuYAML)
	if err != nil {
		panic(err)
	}
	return table
}

func LoadMenuFile(path string) (*MenuTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file %s: %w", path, err)
	}
	return LoadMenu(data)
}

// Normalize trims and lowercases a message for keyword comparison.
func Normalize(message string) string {
	return strings.ToLower(strings.TrimSpace(message))
}

// Lookup returns a copy of the reply for a normalized keyword.
func (m *MenuTable) Lookup(keyword string) (Envelope, bool) {
	env, ok := m.entries[keyword]
	if !ok {
		return Envelope{}, false
	}
	return NewEnvelope(env.Markdown, env.Buttons), true
}

func (m *MenuTable) Welcome() Envelope {
	return NewEnvelope(m.welcome, m.mainMenu)
}

func (m *MenuTable) MainMenu() []string {
	return append([]string(nil), m.mainMenu...)
}

func (m *MenuTable) CancelButtons() []string {
	return append([]string(nil), m.cancelButtons...)
}

// Keywords lists every keyword the table answers, in no particular order.
func (m *MenuTable) Keywords() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}
