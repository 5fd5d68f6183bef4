// Package bot routes incoming Telegram messages through text extraction,
// normalization and calendar scheduling.
package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/slavka0990/transferbot/internal/booking"
	"github.com/slavka0990/transferbot/internal/pdftext"
)

// Normalizer turns free-form booking text into the eight-field reply.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) (string, error)
}

// VisionExtractor transcribes text out of an image.
type VisionExtractor interface {
	ExtractImageText(ctx context.Context, image []byte) (string, error)
}

// Scheduler creates the calendar event and returns its confirmation link.
type Scheduler interface {
	Schedule(ctx context.Context, event booking.Event) (string, error)
}

// telegramAPI is the slice of tgbotapi.BotAPI the router uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetFileDirectURL(fileID string) (string, error)
}

// Config configures the router.
type Config struct {
	Token           string
	PollTimeout     int
	Timezone        string
	MinPhotoTextLen int
	MinPDFTextLen   int
}

// Bot dispatches Telegram updates to the intake pipeline. Messages are
// handled strictly one at a time: each update is fully processed before the
// next one is read from the channel.
type Bot struct {
	api          telegramAPI
	normalizer   Normalizer
	vision       VisionExtractor
	scheduler    Scheduler
	location     *time.Location
	pollTimeout  int
	minPhotoText int
	minPDFText   int

	// seams for tests
	extractPDF   func(data []byte) (string, error)
	downloadFile func(fileID string) ([]byte, error)
}

// New creates the bot and authorizes against the Telegram Bot API.
func New(cfg Config, normalizer Normalizer, vision VisionExtractor, scheduler Scheduler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", cfg.Timezone, err)
	}

	b := &Bot{
		api:          api,
		normalizer:   normalizer,
		vision:       vision,
		scheduler:    scheduler,
		location:     location,
		pollTimeout:  cfg.PollTimeout,
		minPhotoText: cfg.MinPhotoTextLen,
		minPDFText:   cfg.MinPDFTextLen,
	}
	b.extractPDF = pdftext.Extract
	b.downloadFile = b.downloadFromTelegram

	return b, nil
}

// Run polls for updates until the updates channel is closed.
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update.Message)
	}

	return nil
}

func (b *Bot) downloadFromTelegram(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file link: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendReply delivers the normalized reply with Markdown rendering, falling
// back to plain text when Telegram rejects the markup.
func (b *Bot) sendReply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.sendMessage(chatID, text)
	}
}

func (b *Bot) sendTyping(chatID int64) {
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("Error sending chat action: %v", err)
	}
}
