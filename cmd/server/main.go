package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-ingest/internal/platform/config"
	"video-ingest/internal/platform/logger"
	"video-ingest/internal/platform/metrics"
	"video-ingest/internal/video"

	"github.com/go-chi/chi/v5"
)

const (
	shutdownTimeout      = 10 * time.Second
	defaultTranscribeURL = "https://api.openai.com/v1/engines/whisper/transcribe"
)

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	dataDir := config.GetEnv("DATA_DIR", "./data")
	transcribeURL := config.GetEnv("TRANSCRIBE_URL", defaultTranscribeURL)
	apiKey := config.GetEnv("TRANSCRIBE_API_KEY", "")
	transcribeTimeout := config.GetEnvDuration("TRANSCRIBE_TIMEOUT", video.DefaultTranscribeTimeout)
	ffmpegBin := config.GetEnv("FFMPEG_BIN", "ffmpeg")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	log := logger.New(logLevel, logFormat)

	if apiKey == "" {
		log.Warn("TRANSCRIBE_API_KEY is not set, transcription calls will be rejected upstream")
	}

	store, err := video.NewDiskStore(dataDir)
	if err != nil {
		log.Error("store init failed", "error", err)
		os.Exit(1)
	}

	extractor := video.NewFFmpegExtractor(store, ffmpegBin)
	transcriber := video.NewWhisperClient(transcribeURL, apiKey, transcribeTimeout)
	pipe := video.NewPipeline(store, extractor, transcriber, log)
	met := metrics.New()
	h := video.NewHandler(pipe, store, log, met)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetStoredAssets(store.AssetCount()) }).ServeHTTP(w, r)
	})
	r.Post("/upload", h.Upload)
	r.Post("/videos", h.SaveVideo)
	r.Get("/stream/{fileName}", h.Stream)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"data_dir", dataDir,
		"transcribe_timeout", transcribeTimeout.String(),
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
