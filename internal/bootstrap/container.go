package bootstrap

import (
	"context"
	"time"

	"flcs-chatbot-be/internal/config"
	"flcs-chatbot-be/internal/controller"
	"flcs-chatbot-be/internal/notification"
	"flcs-chatbot-be/internal/pkg/logger"
	"flcs-chatbot-be/internal/pkg/mailer"
	"flcs-chatbot-be/internal/repository/contract"
	"flcs-chatbot-be/internal/repository/memory"
	sessionRedis "flcs-chatbot-be/internal/repository/redis"
	"flcs-chatbot-be/internal/repository/unitofwork"
	"flcs-chatbot-be/internal/service"
	"flcs-chatbot-be/internal/websocket"
	"flcs-chatbot-be/pkg/dialogue"
	"flcs-chatbot-be/pkg/embedding"
	"flcs-chatbot-be/pkg/events"
	"flcs-chatbot-be/pkg/llm"
	"flcs-chatbot-be/pkg/llm/factory"
	pktNats "flcs-chatbot-be/pkg/nats"
	"flcs-chatbot-be/pkg/persistence"
	"flcs-chatbot-be/pkg/rag"
	"flcs-chatbot-be/pkg/vectorindex"
	"flcs-chatbot-be/pkg/websearch"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatbotController   controller.IChatbotController
	AnalyticsController controller.IAnalyticsController
	HealthController    controller.IHealthController

	// Services
	ChatService      service.IChatService
	AnalyticsService service.IAnalyticsService
	HealthService    service.IHealthService

	// Dialogue core (also driven directly by cmd/simulate)
	Dialogue *dialogue.Controller

	WebSocketHub *websocket.Hub
	Logger       logger.ILogger

	emailListener *notification.EmailListener
	closers       []func()
}

// NewContainer wires every collaborator from cfg. db may be nil when no
// database is configured; pgvector and the postgres record backend then
// report themselves as not configured.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	c := &Container{Logger: sysLogger}
	timeout := cfg.App.CallTimeout

	// 1. AI collaborators
	embeddingProvider := NewEmbeddingProvider(cfg, sysLogger)
	llmProvider := newLLMProvider(cfg, sysLogger)
	index := c.newVectorIndex(db, cfg, sysLogger)

	searcher, err := websearch.NewSearcher(cfg.Search.Provider, cfg.Search.Endpoint, cfg.Search.APIKey, timeout)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Web search disabled", map[string]interface{}{"error": err.Error()})
		searcher = websearch.Unconfigured{}
	}

	// 2. Record store
	records := persistence.NewGate(newRecordStore(db, cfg, sysLogger), map[persistence.Collection]bool{
		persistence.CollectionQueries:      cfg.Features.AnalyticsEnabled,
		persistence.CollectionViews:        cfg.Features.AnalyticsEnabled,
		persistence.CollectionAppointments: cfg.Features.AppointmentEnabled,
		persistence.CollectionFeedback:     cfg.Features.FeedbackEnabled,
	}, sysLogger)

	// 3. Analytics queue
	pubSub := service.NewPubSub()
	c.closers = append(c.closers, func() { _ = pubSub.Close() })
	c.AnalyticsService = service.NewAnalyticsService(pubSub, records, timeout, sysLogger)

	// 4. Dialogue
	menu := loadMenu(cfg, sysLogger)

	ragCfg := rag.DefaultConfig()
	ragCfg.TopK = cfg.Index.TopK
	ragCfg.CallTimeout = timeout
	ragCfg.Buttons = menu.MainMenu()
	orchestrator := rag.NewOrchestrator(embeddingProvider, index, llmProvider, searcher, c.AnalyticsService, ragCfg, sysLogger)

	c.Dialogue = dialogue.NewController(menu, orchestrator, records, sysLogger,
		dialogue.WithCallTimeout(timeout),
		dialogue.WithListeners(c.submissionListeners(cfg, sysLogger)...),
	)

	// 5. Sessions
	sessions, probes := c.newSessionRepository(cfg, sysLogger)
	c.ChatService = service.NewChatService(c.Dialogue, sessions, sysLogger)
	c.HealthService = service.NewHealthService(embeddingProvider, index, llmProvider, cfg.Index.Name, timeout, probes...)

	// 6. Transport
	c.WebSocketHub = websocket.NewHub(sysLogger)

	c.ChatbotController = controller.NewChatbotController(c.ChatService, c.WebSocketHub, sysLogger)
	c.AnalyticsController = controller.NewAnalyticsController(c.AnalyticsService)
	c.HealthController = controller.NewHealthController(c.HealthService)

	return c
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.AnalyticsService.Consume(ctx)
}

// Close flushes pending notifications and releases connections.
func (c *Container) Close() {
	if c.emailListener != nil {
		c.emailListener.Wait()
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewEmbeddingProvider picks the configured embedder. Any failure degrades to
// embedding.Unconfigured.
func NewEmbeddingProvider(cfg *config.Config, sysLogger logger.ILogger) embedding.EmbeddingProvider {
	apiKey, model := cfg.Ai.CohereAPIKey, cfg.Ai.CohereModel
	switch cfg.Ai.EmbeddingProvider {
	case "gemini":
		apiKey = cfg.Ai.GeminiAPIKey
	case "ollama":
		model = cfg.Ai.OllamaEmbedModel
	}

	provider, err := embedding.NewProvider(cfg.Ai.EmbeddingProvider, apiKey, model, cfg.Ai.OllamaBaseURL, cfg.App.CallTimeout)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Embedding provider disabled", map[string]interface{}{"error": err.Error()})
		return embedding.Unconfigured{}
	}
	if _, ok := provider.(embedding.Unconfigured); ok {
		sysLogger.Warn("BOOTSTRAP", "Embedding provider not configured, knowledge base lookups are skipped", map[string]interface{}{
			"provider": cfg.Ai.EmbeddingProvider,
		})
	} else {
		sysLogger.Info("BOOTSTRAP", "Using embedding provider", map[string]interface{}{"provider": cfg.Ai.EmbeddingProvider, "model": model})
	}
	return provider
}

func newLLMProvider(cfg *config.Config, sysLogger logger.ILogger) llm.LLMProvider {
	baseURL := cfg.Ai.LLMBaseURL
	if baseURL == "" && cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}

	provider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, cfg.Ai.LLMAPIKey, cfg.App.CallTimeout)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Language model disabled", map[string]interface{}{"error": err.Error()})
		return llm.Unconfigured{}
	}
	sysLogger.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})
	return provider
}

func (c *Container) newVectorIndex(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) vectorindex.Index {
	switch cfg.Index.Provider {
	case "qdrant":
		idx, err := vectorindex.NewQdrantIndex(vectorindex.QdrantConfig{
			Host:       cfg.Index.QdrantHost,
			Port:       cfg.Index.QdrantPort,
			APIKey:     cfg.Index.QdrantAPIKey,
			UseTLS:     cfg.Index.QdrantTLS,
			Collection: cfg.Index.Name,
		})
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Qdrant unavailable", map[string]interface{}{"error": err.Error()})
			return vectorindex.Unconfigured{}
		}
		c.closers = append(c.closers, func() { _ = idx.Close() })
		return idx
	case "pgvector":
		if db == nil {
			sysLogger.Warn("BOOTSTRAP", "pgvector index needs DB_CONNECTION_STRING", nil)
			return vectorindex.Unconfigured{}
		}
		return vectorindex.NewPgvectorIndex(unitofwork.NewRepositoryFactory(db), cfg.Index.Name)
	default:
		sysLogger.Warn("BOOTSTRAP", "Vector index not configured", map[string]interface{}{"provider": cfg.Index.Provider})
		return vectorindex.Unconfigured{}
	}
}

// newRecordStore returns nil when no backend can be built; the gate then
// reports ErrNotConfigured for enabled collections.
func newRecordStore(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) persistence.Store {
	f := cfg.Features
	if !f.AnalyticsEnabled && !f.AppointmentEnabled && !f.FeedbackEnabled {
		return nil
	}

	switch cfg.Features.RecordBackend {
	case "postgres":
		if db == nil {
			sysLogger.Warn("BOOTSTRAP", "Postgres record backend needs DB_CONNECTION_STRING", nil)
			return nil
		}
		return persistence.NewPostgresStore(unitofwork.NewUnitOfWork(db).ChatRecordRepository())
	case "sheets":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.App.CallTimeout)
		defer cancel()

		svc, err := persistence.NewSheetsService(ctx, cfg.Sheets.CredentialsPath)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Google Sheets unavailable", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return persistence.NewSheetsStore(svc, map[persistence.Collection]persistence.SheetTarget{
			persistence.CollectionQueries:      {SpreadsheetID: cfg.Sheets.AnalyticsSheetID, Tab: cfg.Sheets.QueriesTab},
			persistence.CollectionViews:        {SpreadsheetID: cfg.Sheets.AnalyticsSheetID, Tab: cfg.Sheets.ViewsTab},
			persistence.CollectionAppointments: {SpreadsheetID: cfg.Sheets.AppointmentID, Tab: cfg.Sheets.AppointmentTab},
			persistence.CollectionFeedback:     {SpreadsheetID: cfg.Sheets.FeedbackID, Tab: cfg.Sheets.FeedbackTab},
		}, sysLogger)
	default:
		sysLogger.Warn("BOOTSTRAP", "Unknown record backend", map[string]interface{}{"backend": cfg.Features.RecordBackend})
		return nil
	}
}

func loadMenu(cfg *config.Config, sysLogger logger.ILogger) *dialogue.MenuTable {
	if cfg.App.MenuFile == "" {
		return dialogue.DefaultMenu()
	}
	menu, err := dialogue.LoadMenuFile(cfg.App.MenuFile)
	if err != nil {
		sysLogger.Error("BOOTSTRAP", "Menu file rejected, using built-in menu", map[string]interface{}{
			"path":  cfg.App.MenuFile,
			"error": err.Error(),
		})
		return dialogue.DefaultMenu()
	}
	return menu
}

// submissionListeners routes completed flows to the event bus when NATS is
// configured, otherwise straight to the admin mailbox.
func (c *Container) submissionListeners(cfg *config.Config, sysLogger logger.ILogger) []dialogue.SubmissionListener {
	var mail mailer.IEmailService
	if cfg.SMTP.Host != "" && cfg.SMTP.AdminEmail != "" {
		mail = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.SMTP.AdminEmail,
		)
	}

	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS publisher", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsPub.Close)
			if mail != nil {
				c.subscribeMailer(cfg, mail, sysLogger)
			}
			return []dialogue.SubmissionListener{notification.NewEventListener(natsPub)}
		}
	}

	if mail == nil {
		return nil
	}
	c.emailListener = notification.NewEmailListener(mail, sysLogger)
	return []dialogue.SubmissionListener{c.emailListener}
}

func (c *Container) subscribeMailer(cfg *config.Config, mail mailer.IEmailService, sysLogger logger.ILogger) {
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect NATS subscriber", map[string]interface{}{"error": err.Error()})
		return
	}
	c.closers = append(c.closers, natsSub.Close)

	handler := notification.EmailHandler(mail)
	for eventType, durable := range map[string]string{
		events.TypeAppointmentSubmitted: "admin-mail-appointment",
		events.TypeFeedbackSubmitted:    "admin-mail-feedback",
	} {
		if err := natsSub.Subscribe(eventType, durable, handler); err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to subscribe admin mailer", map[string]interface{}{
				"event": eventType,
				"error": err.Error(),
			})
		}
	}
}

func (c *Container) newSessionRepository(cfg *config.Config, sysLogger logger.ILogger) (contract.SessionRepository, []service.Probe) {
	if cfg.Session.Store == "redis" {
		client, err := sessionRedis.NewClient(cfg.Session.RedisURL)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err = client.Ping(ctx).Err()
			cancel()
		}
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Redis session store unavailable, falling back to memory", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, func() { _ = client.Close() })
			repo := sessionRedis.NewSessionRepository(client, cfg.Session.TTL)
			sysLogger.Info("BOOTSTRAP", "Using redis session store", nil)
			return repo, []service.Probe{{Name: "Session store", Check: repo.Ping}}
		}
	}
	return memory.NewSessionRepository(cfg.Session.TTL), nil
}
