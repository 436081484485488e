package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"lingokit/config"
	"lingokit/core"
	"lingokit/orchestrator"
	elevenlabs "lingokit/services/elevenlabs/tts"
	openaillm "lingokit/services/openai/llm"
	"lingokit/store"
	"lingokit/transport/ws"
)

func main() {
	if err := godotenv.Load(".env.local"); err != nil {
		core.GetLogger().With(map[string]any{"error": err}).Warn("No .env.local file found or failed to load")
	}

	cfg, err := config.Load()
	if err != nil {
		core.GetLogger().With(map[string]any{"error": err}).Fatal("failed to load configuration")
	}
	setupLogger(cfg)
	logger := core.GetLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		logger.With(map[string]any{"error": err, "path": cfg.Database.Path}).Fatal("failed to open database")
	}
	defer db.Close()

	llmService, err := openaillm.NewOpenAILLMService(openaillm.Config{
		APIKey:             cfg.OpenAI.APIKey,
		ChatModel:          cfg.OpenAI.ChatModel,
		FeedbackModel:      cfg.OpenAI.FeedbackModel,
		TranscriptionModel: cfg.OpenAI.TranscriptionModel,
	}, logger)
	if err != nil {
		logger.With(map[string]any{"error": err}).Fatal("failed to create LLM service")
	}
	if err := llmService.Init(ctx); err != nil {
		logger.With(map[string]any{"error": err}).Fatal("failed to initialize LLM service")
	}

	ttsService, err := elevenlabs.NewElevenLabsTTS(elevenlabs.ElevenLabsTTSConfig{
		APIKey:  cfg.TTS.ElevenLabsAPIKey,
		ModelID: cfg.TTS.ModelID,
	}, logger)
	if err != nil {
		logger.With(map[string]any{"error": err}).Fatal("failed to create TTS service")
	}

	persister, err := orchestrator.NewWAVFilePersister(cfg.Audio.OutputDir, cfg.Audio.URLPrefix)
	if err != nil {
		logger.With(map[string]any{"error": err}).Fatal("failed to prepare audio output dir")
	}

	wsHandler := ws.NewHandler(orchestrator.Dependencies{
		LLM:            llmService,
		Speech:         ttsService,
		Persister:      persister,
		Personas:       db.Personas,
		Profiles:       db.Profiles,
		Settings:       db.Settings,
		Logger:         logger,
		DefaultVoiceID: cfg.TTS.DefaultVoiceID,
	}, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /ws/conversation/{language_profile_id}", wsHandler)
	mux.Handle(cfg.Audio.URLPrefix+"/", http.StripPrefix(cfg.Audio.URLPrefix+"/", http.FileServer(http.Dir(cfg.Audio.OutputDir))))

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: mux,
	}

	go func() {
		logger.With(map[string]any{"addr": cfg.Server.ListenAddr}).Info("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.With(map[string]any{"error": err}).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.With(map[string]any{"error": err}).Warn("shutdown did not finish cleanly")
	}
}

// setupLogger installs the global logger: pretty console output in
// development, zerolog JSON in production.
func setupLogger(cfg *config.Config) {
	if cfg.Logging.Mode == "development" {
		core.SetLogger(*core.NewDevelopmentLogger())
		return
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	core.SetLogger(*core.NewZerologLogger(zl))
}
