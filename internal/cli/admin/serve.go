// Package admin implements the paperchatd server commands.
package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperchat-ai/paperchat/internal/api/handlers"
	"github.com/paperchat-ai/paperchat/internal/config"
	"github.com/paperchat-ai/paperchat/internal/jobs"
	"github.com/paperchat-ai/paperchat/internal/openai"
	"github.com/paperchat-ai/paperchat/internal/server"
	"github.com/paperchat-ai/paperchat/internal/service"
	"github.com/paperchat-ai/paperchat/internal/telemetry"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the paperchat API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		log.Println("no server-side OPENAI_API_KEY configured; every request must carry its own credential")
	}

	chunkCfg := service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}
	if err := chunkCfg.Validate(); err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	var store service.SessionStore
	var serverStore *service.ServerSessionStore
	if cfg.Stateless() {
		store = service.NewStatelessSessionStore()
		log.Println("session mode: stateless (sessions serialized to the caller)")
	} else {
		serverStore = service.NewServerSessionStore()
		store = serverStore
		log.Println("session mode: server (sessions held in memory)")
	}

	factory := openai.NewFactory(openai.Config{
		EmbeddingModel: cfg.EmbeddingModel,
		ChatModel:      cfg.ChatModel,
	})

	embeddingSvc := service.NewEmbeddingService(factory, cfg.EmbedBatchSize)
	uuidGen := &service.DefaultUUIDGenerator{}
	ingestSvc := service.NewIngestService(embeddingSvc, store, uuidGen, chunkCfg)
	chatSvc := service.NewChatService(embeddingSvc, factory, store, cfg.TopK)

	var janitor *jobs.Janitor
	if serverStore != nil && cfg.SessionTTL > 0 {
		janitor = jobs.NewJanitor(serverStore, cfg.SessionTTL)
		go janitor.Start(ctx)
	}

	maxUploadBytes := cfg.MaxUploadMB << 20

	routerCfg := server.RouterConfig{
		FallbackAPIKey: cfg.OpenAIAPIKey,
		MaxUploadBytes: maxUploadBytes,
		UploadHandler:  handlers.NewUploadHandler(ingestSvc, store, maxUploadBytes),
		ChatHandler:    handlers.NewChatHandler(chatSvc),
		SessionHandler: handlers.NewSessionHandler(store),
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if janitor != nil {
		janitor.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}
