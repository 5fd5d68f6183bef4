package bot

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/slavka0990/transferbot/internal/booking"
)

const (
	usageHint = "Пришлите заявку на трансфер текстом, фотографией или PDF-документом - " +
		"я приведу её к единому виду и добавлю событие в календарь."

	msgProcessingText  = "🤖 Обрабатываю текст..."
	msgProcessingAI    = "🤖 Обрабатываю с помощью ИИ..."
	msgAnalyzingPhoto  = "🔍 Анализирую фотографию..."
	msgPhotoTooLittle  = "⚠️ Извлечено мало текста из фотографии."
	msgPDFUnreadable   = "❌ Не удалось прочитать PDF. Попробуйте отправить скриншот."
	msgPDFTooLittle    = "⚠️ Извлечено мало текста из PDF. Попробуйте отправить скриншот."
	msgDownloadFailed  = "❌ Не удалось загрузить файл из Telegram."
	msgScheduleFailed  = "❌ Не удалось создать событие в календаре."
	msgCalendarFailed  = "⚠️ Не удалось создать событие в календаре."
	msgEventScheduled  = "✅ Событие добавлено в Google Календарь!\n"
	errPrefixOpenAI    = "❌ Ошибка OpenAI: "
	errPrefixOCR       = "❌ Ошибка OCR: "
)

// handleMessage processes one inbound message to completion.
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	ctx := context.Background()

	b.sendTyping(msg.Chat.ID)

	switch {
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.IsCommand():
		b.sendMessage(msg.Chat.ID, usageHint)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	b.sendMessage(msg.Chat.ID, msgProcessingText)
	b.runPipeline(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	// The photo sizes are ordered smallest to largest; take the largest.
	photo := msg.Photo[len(msg.Photo)-1]

	data, err := b.downloadFile(photo.FileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgDownloadFailed)
		return
	}

	b.sendMessage(msg.Chat.ID, msgAnalyzingPhoto)

	text, err := b.vision.ExtractImageText(ctx, data)
	if err != nil {
		b.sendMessage(msg.Chat.ID, errPrefixOCR+err.Error())
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < b.minPhotoText {
		b.sendMessage(msg.Chat.ID, msgPhotoTooLittle)
		return
	}

	b.sendMessage(msg.Chat.ID, msgProcessingAI)
	b.runPipeline(ctx, msg.Chat.ID, text)
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	data, err := b.downloadFile(msg.Document.FileID)
	if err != nil {
		log.Printf("Error downloading document: %v", err)
		b.sendMessage(msg.Chat.ID, msgDownloadFailed)
		return
	}

	text, err := b.extractPDF(data)
	if err != nil {
		log.Printf("Error reading PDF: %v", err)
		b.sendMessage(msg.Chat.ID, msgPDFUnreadable)
		return
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < b.minPDFText {
		b.sendMessage(msg.Chat.ID, msgPDFTooLittle)
		return
	}

	b.sendMessage(msg.Chat.ID, msgProcessingAI)
	b.runPipeline(ctx, msg.Chat.ID, text)
}

// runPipeline is the shared tail of every content kind: normalize the raw
// text, deliver the reply, then try to schedule. The reply is delivered
// regardless of the scheduling outcome.
func (b *Bot) runPipeline(ctx context.Context, chatID int64, raw string) {
	reply, err := b.normalizer.Normalize(ctx, raw)
	if err != nil {
		b.sendMessage(chatID, errPrefixOpenAI+err.Error())
		return
	}

	b.sendReply(chatID, reply)
	b.scheduleBooking(ctx, chatID, reply, raw)
}

func (b *Bot) scheduleBooking(ctx context.Context, chatID int64, reply, raw string) {
	candidate, ok := booking.Resolve(reply, raw)
	if !ok {
		b.sendMessage(chatID, msgScheduleFailed)
		return
	}

	event, err := booking.NewEvent(reply, candidate, b.location)
	if err != nil {
		log.Printf("Error parsing date/time %q %q: %v", candidate.DateStr, candidate.TimeStr, err)
		b.sendMessage(chatID, msgScheduleFailed)
		return
	}

	link, err := b.scheduler.Schedule(ctx, event)
	if err != nil {
		log.Printf("Error creating calendar event: %v", err)
		b.sendMessage(chatID, msgCalendarFailed)
		return
	}

	b.sendMessage(chatID, msgEventScheduled+link)
}
