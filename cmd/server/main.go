package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/navellino/concierge-backend/internal/domain/repository"
	"github.com/navellino/concierge-backend/internal/infrastructure/config"
	"github.com/navellino/concierge-backend/internal/infrastructure/persistence"
	"github.com/navellino/concierge-backend/internal/interface/ai"
	"github.com/navellino/concierge-backend/internal/interface/httpapi"
	"github.com/navellino/concierge-backend/internal/interface/kb"
	"github.com/navellino/concierge-backend/internal/interface/mail"
	storeRepo "github.com/navellino/concierge-backend/internal/interface/repository"
	"github.com/navellino/concierge-backend/internal/usecase"
	"github.com/navellino/concierge-backend/pkg/logger"
	"github.com/navellino/concierge-backend/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Concierge Backend")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("concierge")

	// Resolve the bookings backend once; the decision is fixed for
	// the process lifetime.
	store, backend, err := storeRepo.ResolveStore(ctx, storeRepo.StoreConfig{
		ExcelPath:      cfg.BookingsExcelPath,
		SheetName:      cfg.BookingsSheetName,
		SheetID:        cfg.GoogleSheetID,
		CredentialJSON: cfg.GoogleServiceAccountJSON,
	}, log)
	if err != nil {
		log.Fatal("Failed to resolve bookings backend", "error", err)
	}
	log.Info("Bookings backend selected", "backend", backend)

	// Knowledge base, parsed once at startup.
	knowledge := kb.Load(cfg.KnowledgePath, log)

	// Chat log sink: MongoDB when configured, structured log otherwise.
	var chatLogs repository.ChatLogRepository = storeRepo.NewLoggerChatLogRepository(log)
	if cfg.MongoURI != "" {
		log.Info("Connecting to MongoDB")
		mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error("MongoDB disconnect error", "error", err)
			}
		}()
		chatLogs = storeRepo.NewMongoChatLogRepository(db)
	}

	// Collaborators.
	responder := ai.NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.AIModel, cfg.AITemperature, cfg.AIMaxTokens, log)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.SMTPUseSSL, log)

	// Usecases.
	matcher := usecase.NewBookingMatcher(store, log, m)
	orchestrator := usecase.NewChatOrchestrator(matcher, knowledge, responder, chatLogs, log, m)

	// HTTP surface.
	api := httpapi.NewServer(matcher, orchestrator, sender, cfg.HostNotificationEmails, cfg.DefaultPropertyID, log, m)

	mux := http.NewServeMux()
	api.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpapi.CORS(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	log.Info("Concierge Backend stopped")
}
