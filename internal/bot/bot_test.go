package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavka0990/transferbot/internal/booking"
)

const normalizedReply = "**Дата и Время:** 05.09.2025 14:30\n" +
	"**Тип транспортного средства:** Minivan\n" +
	"**Откуда:** А\n" +
	"**Куда:** Б\n" +
	"**Кол-во пассажиров:** 3\n" +
	"**Телефон пассажиров:** не указано\n" +
	"**Имя пассажиров:** не указано\n" +
	"**Дополнительно:** не указано"

type fakeAPI struct {
	sent         []tgbotapi.MessageConfig
	actions      int
	rejectMarkup bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}
	if f.rejectMarkup && msg.ParseMode == tgbotapi.ModeMarkdown {
		return tgbotapi.Message{}, errors.New("Bad Request: can't parse entities")
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.actions++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return "", errors.New("no file server in tests")
}

func (f *fakeAPI) texts() []string {
	texts := make([]string, len(f.sent))
	for i, msg := range f.sent {
		texts[i] = msg.Text
	}
	return texts
}

type fakeNormalizer struct {
	reply string
	err   error
	calls int
}

func (f *fakeNormalizer) Normalize(ctx context.Context, raw string) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeVision struct {
	text string
	err  error
}

func (f *fakeVision) ExtractImageText(ctx context.Context, image []byte) (string, error) {
	return f.text, f.err
}

type fakeScheduler struct {
	link   string
	err    error
	events []booking.Event
}

func (f *fakeScheduler) Schedule(ctx context.Context, event booking.Event) (string, error) {
	f.events = append(f.events, event)
	return f.link, f.err
}

func newTestBot(api *fakeAPI, n *fakeNormalizer, v *fakeVision, s *fakeScheduler) *Bot {
	location, err := time.LoadLocation("Europe/Minsk")
	if err != nil {
		panic(err)
	}

	b := &Bot{
		api:          api,
		normalizer:   n,
		vision:       v,
		scheduler:    s,
		location:     location,
		pollTimeout:  1,
		minPhotoText: 20,
		minPDFText:   50,
	}
	b.extractPDF = func(data []byte) (string, error) {
		return string(data), nil
	}
	b.downloadFile = func(fileID string) ([]byte, error) {
		return []byte(fileID), nil
	}
	return b
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 42}}
}

func TestHandleTextSchedulesBooking(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: normalizedReply}
	scheduler := &fakeScheduler{link: "https://calendar.google.com/event?eid=abc"}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("Заказ на 05.09.2025 в 14:30, Minivan, из А в Б, 3 чел"))

	require.Len(t, scheduler.events, 1)
	event := scheduler.events[0]
	assert.Equal(t, "Minivan - Заказ", event.Summary)
	assert.Equal(t, time.Date(2025, 9, 5, 14, 30, 0, 0, b.location), event.Start)
	assert.Equal(t, time.Date(2025, 9, 5, 15, 30, 0, 0, b.location), event.End)

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, msgProcessingText, texts[0])
	assert.Contains(t, texts[1], "05.09.2025")
	assert.Equal(t, tgbotapi.ModeMarkdown, api.sent[1].ParseMode)
	assert.Equal(t, msgEventScheduled+"https://calendar.google.com/event?eid=abc", texts[2])

	assert.Equal(t, 1, api.actions, "typing action should be reported once")
}

func TestHandleTextResolverFallsBackToRawText(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: "**Дата и Время:** не указано"}
	scheduler := &fakeScheduler{link: "https://calendar.google.com/event"}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("Подача 12.10.2025 в 08:00"))

	require.Len(t, scheduler.events, 1)
	assert.Equal(t, time.Date(2025, 10, 12, 8, 0, 0, 0, b.location), scheduler.events[0].Start)
}

func TestHandleTextNoDateTimeSkipsScheduling(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: "**Дата и Время:** не указано"}
	scheduler := &fakeScheduler{}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("нужен минивэн из аэропорта"))

	assert.Empty(t, scheduler.events, "no calendar call may be attempted")

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[1], "не указано", "reply is still delivered")
	assert.Equal(t, msgScheduleFailed, texts[2])
}

func TestHandleTextNormalizerError(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{err: errors.New("quota exceeded")}
	scheduler := &fakeScheduler{}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("Заказ на 05.09.2025 в 14:30"))

	assert.Empty(t, scheduler.events)

	texts := api.texts()
	require.Len(t, texts, 2)
	assert.Equal(t, errPrefixOpenAI+"quota exceeded", texts[1])
}

func TestHandleTextSchedulerFailure(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: normalizedReply}
	scheduler := &fakeScheduler{err: errors.New("auth failed")}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("Заказ на 05.09.2025 в 14:30"))

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[1], "05.09.2025", "reply delivered before the calendar attempt")
	assert.Equal(t, msgCalendarFailed, texts[2])
}

func TestSendReplyFallsBackToPlainText(t *testing.T) {
	api := &fakeAPI{rejectMarkup: true}
	normalizer := &fakeNormalizer{reply: normalizedReply}
	scheduler := &fakeScheduler{link: "link"}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)

	b.handleMessage(textMessage("Заказ на 05.09.2025 в 14:30"))

	texts := api.texts()
	require.Len(t, texts, 3)
	assert.Contains(t, texts[1], "05.09.2025")
	assert.Empty(t, api.sent[1].ParseMode, "fallback message must be plain text")
}

func TestHandlePhoto(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: normalizedReply}
	vision := &fakeVision{text: "Заказ на 05.09.2025 в 14:30, Minivan, из А в Б"}
	scheduler := &fakeScheduler{link: "link"}
	b := newTestBot(api, normalizer, vision, scheduler)

	var downloaded string
	b.downloadFile = func(fileID string) ([]byte, error) {
		downloaded = fileID
		return []byte("image-bytes"), nil
	}

	msg := &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "thumb", Width: 90},
			{FileID: "full", Width: 1280},
		},
	}
	b.handleMessage(msg)

	assert.Equal(t, "full", downloaded, "largest photo size must be used")
	assert.Equal(t, 1, normalizer.calls)
	require.Len(t, scheduler.events, 1)

	texts := api.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, msgAnalyzingPhoto, texts[0])
	assert.Equal(t, msgProcessingAI, texts[1])
}

func TestHandlePhotoTooLittleText(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{}
	vision := &fakeVision{text: "мало текста"}
	b := newTestBot(api, normalizer, vision, &fakeScheduler{})

	msg := &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "full"}},
	}
	b.handleMessage(msg)

	assert.Zero(t, normalizer.calls, "normalizer must not see near-empty text")
	assert.Equal(t, []string{msgAnalyzingPhoto, msgPhotoTooLittle}, api.texts())
}

func TestHandlePhotoExtractionError(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{}
	vision := &fakeVision{err: errors.New("vision completion failed")}
	b := newTestBot(api, normalizer, vision, &fakeScheduler{})

	msg := &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 42},
		Photo: []tgbotapi.PhotoSize{{FileID: "full"}},
	}
	b.handleMessage(msg)

	assert.Zero(t, normalizer.calls)
	require.Len(t, api.texts(), 2)
	assert.Equal(t, errPrefixOCR+"vision completion failed", api.texts()[1])
}

func TestHandleDocumentTooLittleText(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{}
	b := newTestBot(api, normalizer, &fakeVision{}, &fakeScheduler{})
	b.extractPDF = func(data []byte) (string, error) {
		return "короткий текст", nil
	}

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "doc"},
	}
	b.handleMessage(msg)

	assert.Zero(t, normalizer.calls, "pipeline must halt before normalization")
	assert.Equal(t, []string{msgPDFTooLittle}, api.texts())
}

func TestHandleDocumentUnreadable(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{}
	b := newTestBot(api, normalizer, &fakeVision{}, &fakeScheduler{})
	b.extractPDF = func(data []byte) (string, error) {
		return "", errors.New("unreadable pdf")
	}

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "doc"},
	}
	b.handleMessage(msg)

	assert.Zero(t, normalizer.calls)
	assert.Equal(t, []string{msgPDFUnreadable}, api.texts())
}

func TestHandleDocument(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{reply: normalizedReply}
	scheduler := &fakeScheduler{link: "link"}
	b := newTestBot(api, normalizer, &fakeVision{}, scheduler)
	b.extractPDF = func(data []byte) (string, error) {
		return "Заявка на трансфер: подача 05.09.2025 к 14:30, Minivan, три пассажира", nil
	}

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "doc"},
	}
	b.handleMessage(msg)

	assert.Equal(t, 1, normalizer.calls)
	require.Len(t, scheduler.events, 1)
	assert.Equal(t, msgProcessingAI, api.texts()[0])
}

func TestHandleCommand(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, &fakeNormalizer{}, &fakeVision{}, &fakeScheduler{})

	msg := &tgbotapi.Message{
		Text: "/start",
		Chat: &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: 6},
		},
	}
	b.handleMessage(msg)

	assert.Equal(t, []string{usageHint}, api.texts())
}

func TestHandleDownloadFailure(t *testing.T) {
	api := &fakeAPI{}
	normalizer := &fakeNormalizer{}
	b := newTestBot(api, normalizer, &fakeVision{}, &fakeScheduler{})
	b.downloadFile = func(fileID string) ([]byte, error) {
		return nil, errors.New("file not found")
	}

	msg := &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 42},
		Document: &tgbotapi.Document{FileID: "doc"},
	}
	b.handleMessage(msg)

	assert.Zero(t, normalizer.calls)
	assert.Equal(t, []string{msgDownloadFailed}, api.texts())
}

func TestRunDrainsClosedChannel(t *testing.T) {
	b := newTestBot(&fakeAPI{}, &fakeNormalizer{}, &fakeVision{}, &fakeScheduler{})
	require.NoError(t, b.Run())
}
