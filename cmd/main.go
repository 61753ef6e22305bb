package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/solisa-ai/leadflow/internal/ai"
	"github.com/solisa-ai/leadflow/internal/channels"
	"github.com/solisa-ai/leadflow/internal/config"
	"github.com/solisa-ai/leadflow/internal/followup"
	"github.com/solisa-ai/leadflow/internal/leads"
	"github.com/solisa-ai/leadflow/internal/personalize"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	zcfg := zap.NewProductionConfig()
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// --- Record store: Postgres when configured, memory otherwise ---
	var repo leads.Repo
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db open error", zap.Error(err))
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal("db ping error", zap.Error(err))
		}
		if err := leads.EnsureSchema(ctx, db); err != nil {
			logger.Fatal("db schema error", zap.Error(err))
		}
		repo = leads.NewRepo(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		repo = leads.NewMemoryRepo()
	}

	// --- Autopilot state: Redis when configured, memory otherwise ---
	var state followup.StateStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis url error", zap.Error(err))
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis ping error", zap.Error(err))
		}
		defer rdb.Close()
		state = followup.NewRedisState(rdb)
	} else {
		state = followup.NewMemoryState()
	}

	// --- Generation backend: mock mode when no API key is set. The agent
	// analyze call can run on its own model.
	var aiClient, followupAI ai.AI
	if cfg.OpenAIKey != "" {
		aiClient = ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, logger)
		followupAI = ai.NewOpenAIClient(cfg.OpenAIKey, cfg.FollowupModel, logger)
	}

	branding := personalize.Branding{
		CalendlyURL:   cfg.CalendlyURL,
		SenderName:    cfg.SenderName,
		SenderTitle:   cfg.SenderTitle,
		SenderCompany: cfg.SenderCompany,
		SenderPhone:   cfg.SenderPhone,
		SenderEmail:   cfg.SenderEmail,
	}
	gen := personalize.NewGenerator(aiClient, branding, logger)

	// --- Channels ---
	sms := channels.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
		cfg.TwilioFromNumber, cfg.DryRunSMS, logger)
	outbox, err := channels.NewOutbox(cfg.OutboxDir, cfg.SenderCompany, cfg.EmailFrom)
	if err != nil {
		logger.Fatal("outbox error", zap.Error(err))
	}
	var email channels.EmailSender
	if cfg.EmailTransport == "smtp" {
		email = channels.NewSMTPEmail(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, outbox, logger)
	} else {
		email = channels.NewConsoleEmail(outbox, logger)
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Webhook-Secret"},
	}))

	// --- Module wiring ---
	leadsService := leads.NewService(repo, gen, sms, email, cfg.CalendlyURL, logger)
	leadsHandler := leads.NewHandler(leadsService, cfg.WebhookSecret, logger)
	leads.RegisterRoutes(r, leadsHandler)

	followupService := followup.NewService(repo, leadsService, gen, state, followupAI,
		cfg.CalendlyURL, cfg.AgentEnabled, cfg.AgentMinInterval, logger)
	followupHandler := followup.NewHandler(followupService)
	followup.RegisterRoutes(r, followupHandler)

	// --- health ---
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"leadflow running","timestamp":"` +
			time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	logger.Info("listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
