package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/notexe/tab-reminder/internal/host"
)

const defaultTelegramURL = "https://api.telegram.org"

// TelegramConfig configures the Telegram backend.
type TelegramConfig struct {
	BotToken    string
	ChatID      string // numeric; callback queries are matched against it
	BaseURL     string
	RatePerSec  int
	PollTimeout int // seconds, long-polling timeout for getUpdates
}

// Telegram sends notifications as chat messages with an inline keyboard.
// Button presses arrive as callback queries, collected by Poll.
type Telegram struct {
	client  host.HTTPDoer
	baseURL string
	token   string
	chatID  string
	timeout int
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu           sync.Mutex
	messages     map[string]int64 // notification id -> message_id
	byMessage    map[int64]string
	lastUpdateID int64

	listeners listeners
}

var _ host.NotificationService = (*Telegram)(nil)

// NewTelegram creates a Telegram backend. A nil client gets one with a
// timeout long enough for long polling.
func NewTelegram(client host.HTTPDoer, cfg TelegramConfig, logger zerolog.Logger) *Telegram {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultTelegramURL
	}

	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	if pollTimeout > 50 {
		pollTimeout = 50 // Telegram max
	}

	if client == nil {
		client = &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second}
	}

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}

	return &Telegram{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     cfg.BotToken,
		chatID:    cfg.ChatID,
		timeout:   pollTimeout,
		limiter:   rate.NewLimiter(rate.Limit(perSec), perSec),
		logger:    logger.With().Str("component", "notify.telegram").Logger(),
		messages:  make(map[string]int64),
		byMessage: make(map[int64]string),
	}
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Create sends the notification. A notification already showing under the
// same id is deleted first.
func (t *Telegram) Create(ctx context.Context, id string, opts host.NotificationOptions) (string, error) {
	id = newID(id)

	if _, err := t.Clear(ctx, id); err != nil {
		t.logger.Warn().Err(err).Str("notification_id", id).Msg("failed to replace notification")
	}

	row := make([]inlineButton, 0, len(opts.Buttons))
	for i, b := range opts.Buttons {
		row = append(row, inlineButton{Text: b.Title, CallbackData: strconv.Itoa(i)})
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       formatMessage(opts),
		"parse_mode": "HTML",
	}
	if len(row) > 0 {
		payload["reply_markup"] = map[string]interface{}{
			"inline_keyboard": [][]inlineButton{row},
		}
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("send rate limit: %w", err)
	}

	var msg struct {
		MessageID int64 `json:"message_id"`
	}
	if err := t.call(ctx, "sendMessage", payload, &msg); err != nil {
		return "", fmt.Errorf("failed to send notification: %w", err)
	}

	t.mu.Lock()
	t.messages[id] = msg.MessageID
	t.byMessage[msg.MessageID] = id
	t.mu.Unlock()

	return id, nil
}

// Clear deletes the notification's message.
func (t *Telegram) Clear(ctx context.Context, id string) (bool, error) {
	t.mu.Lock()
	msgID, ok := t.messages[id]
	if ok {
		delete(t.messages, id)
		delete(t.byMessage, msgID)
	}
	t.mu.Unlock()

	if !ok {
		return false, nil
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"message_id": msgID,
	}
	if err := t.call(ctx, "deleteMessage", payload, nil); err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return true, nil
}

func (t *Telegram) OnButtonClicked(listener host.ButtonListener) {
	t.listeners.add(listener)
}

type callbackQuery struct {
	ID      string `json:"id"`
	Data    string `json:"data"`
	Message *struct {
		MessageID int64 `json:"message_id"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type update struct {
	UpdateID      int64          `json:"update_id"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

// Poll long-polls getUpdates and dispatches button presses until ctx is
// done. Transient errors are logged and polling continues.
func (t *Telegram) Poll(ctx context.Context) error {
	t.logger.Info().Msg("polling for button presses")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if err := t.pollOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			t.logger.Warn().Err(err).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
		}
	}
}

func (t *Telegram) pollOnce(ctx context.Context) error {
	t.mu.Lock()
	offset := t.lastUpdateID
	t.mu.Unlock()

	payload := map[string]interface{}{
		"timeout":         t.timeout,
		"allowed_updates": []string{"callback_query"},
	}
	if offset > 0 {
		payload["offset"] = offset + 1
	}

	var updates []update
	if err := t.call(ctx, "getUpdates", payload, &updates); err != nil {
		return err
	}

	for _, u := range updates {
		t.mu.Lock()
		if u.UpdateID > t.lastUpdateID {
			t.lastUpdateID = u.UpdateID
		}
		t.mu.Unlock()

		if u.CallbackQuery != nil {
			t.handleCallback(ctx, u.CallbackQuery)
		}
	}
	return nil
}

func (t *Telegram) handleCallback(ctx context.Context, q *callbackQuery) {
	// acknowledge so the client stops its spinner
	if err := t.call(ctx, "answerCallbackQuery", map[string]interface{}{"callback_query_id": q.ID}, nil); err != nil {
		t.logger.Debug().Err(err).Msg("answerCallbackQuery failed")
	}

	if q.Message == nil || strconv.FormatInt(q.Message.Chat.ID, 10) != t.chatID {
		return
	}

	index, err := strconv.Atoi(q.Data)
	if err != nil {
		t.logger.Debug().Str("data", q.Data).Msg("ignoring foreign callback data")
		return
	}

	t.mu.Lock()
	id, ok := t.byMessage[q.Message.MessageID]
	t.mu.Unlock()
	if !ok {
		return
	}

	t.listeners.dispatch(id, index)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result"`
}

// call posts payload to a Bot API method and decodes the result into out.
func (t *Telegram) call(ctx context.Context, method string, payload map[string]interface{}, out interface{}) error {
	url := fmt.Sprintf("%s/bot%s/%s", t.baseURL, t.token, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram API error: %s", apiResp.Description)
	}

	if out != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

func formatMessage(opts host.NotificationOptions) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(opts.Title))
	b.WriteString("</b>")
	if opts.Message != "" && opts.Message != opts.Title {
		b.WriteString("\n")
		b.WriteString(html.EscapeString(opts.Message))
	}
	if !opts.EventTime.IsZero() {
		b.WriteString("\n<i>")
		b.WriteString(opts.EventTime.Local().Format("Jan 2 15:04:05"))
		b.WriteString("</i>")
	}
	return b.String()
}
