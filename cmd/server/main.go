package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fitness-chatter/internal/api"
	"fitness-chatter/internal/chat"
	"fitness-chatter/internal/config"
	"fitness-chatter/internal/llm"
	"fitness-chatter/internal/storage"
	"fitness-chatter/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, closeStore, err := storage.Open(openCtx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("failed to open %s history store: %v", cfg.HistoryBackend, err)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			log.Printf("failed to close history store: %v", err)
		}
	}()

	llmClient, err := llm.New(cfg)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	chatSvc := chat.NewService(store, llmClient)
	log.Printf("Using provider=%s model=%s history=%s", cfg.LLMProvider, cfg.LLMModel, cfg.HistoryBackend)

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.New(cfg.TelegramBotToken, chatSvc)
		if err != nil {
			log.Fatalf("failed to create bot: %v", err)
		}
		go bot.Start(ctx)
	}

	srv := api.NewServer(chatSvc, cfg.HTTPAddr)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server failed: %v", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
	}
}
