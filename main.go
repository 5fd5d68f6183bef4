package main

import (
	"context"
	"log"

	"github.com/slavka0990/transferbot/internal/bot"
	"github.com/slavka0990/transferbot/internal/config"
	"github.com/slavka0990/transferbot/internal/gcal"
	"github.com/slavka0990/transferbot/internal/openai"
)

func main() {
	cfg := config.LoadFromEnv()

	if cfg.TelegramToken == "" || cfg.OpenAIAPIKey == "" {
		log.Fatal("TELEGRAM_TOKEN and OPENAI_API_KEY must be set")
	}

	openaiClient := openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Temperature: float32(cfg.OpenAITemperature),
		MaxTokens:   cfg.OpenAIMaxTokens,
	})

	ctx := context.Background()
	scheduler, err := gcal.NewScheduler(ctx, gcal.Config{
		CredentialsFile: cfg.CredentialsFile,
		CalendarID:      cfg.CalendarID,
		Timezone:        cfg.Timezone,
	})
	if err != nil {
		log.Fatalf("Failed to initialize calendar scheduler: %v", err)
	}

	b, err := bot.New(bot.Config{
		Token:           cfg.TelegramToken,
		PollTimeout:     cfg.PollTimeoutSeconds,
		Timezone:        cfg.Timezone,
		MinPhotoTextLen: cfg.MinPhotoTextLen,
		MinPDFTextLen:   cfg.MinPDFTextLen,
	}, openaiClient, openaiClient, scheduler)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v", err)
	}

	log.Println("Bot is running. Press Ctrl+C to stop.")

	if err := b.Run(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
