package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) string

type telegramUpdate struct {
	UpdateID int              `json:"update_id"`
	Message  *telegramMessage `json:"message"`
}

type telegramMessage struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

const pollRetryDelay = 5 * time.Second

// StartPolling long-polls getUpdates and answers commands from the configured
// chat. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	client := &http.Client{Timeout: 35 * time.Second, Transport: t.Client.Transport}
	offset := 0
	for ctx.Err() == nil {
		updates, err := t.getUpdates(ctx, client, offset)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Printf("[WARN] telegram polling: %v", err)
			sleepCtx(ctx, pollRetryDelay)
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			t.handleUpdate(ctx, u, handler)
		}
	}
	log.Println("[INFO] Telegram polling stopped")
}

func (t *TelegramNotifier) getUpdates(ctx context.Context, client *http.Client, offset int) ([]telegramUpdate, error) {
	apiURL := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=30", t.BaseURL, t.BotToken, offset)
	req, err := http.NewRequestWithContext(ctx, "GET", apiURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read updates: %w", err)
	}
	var result struct {
		OK     bool             `json:"ok"`
		Result []telegramUpdate `json:"result"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return result.Result, nil
}

func (t *TelegramNotifier) handleUpdate(ctx context.Context, u telegramUpdate, handler CommandHandler) {
	if u.Message == nil || strings.TrimSpace(u.Message.Text) == "" {
		return
	}
	chatID := strconv.FormatInt(u.Message.Chat.ID, 10)
	if chatID != t.ChatID {
		log.Printf("[WARN] ignoring message from chat %s", chatID)
		return
	}
	command := normalizeCommand(u.Message.Text)
	log.Printf("[INFO] received command: %s", command)
	reply := handler(ctx, command)
	if reply == "" {
		return
	}
	if err := t.sendTo(ctx, chatID, reply); err != nil {
		log.Printf("[ERROR] send reply: %v", err)
	}
}

// normalizeCommand trims text and drops the "@BotName" suffix group chats
// append to the command word.
func normalizeCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if strings.HasPrefix(fields[0], "/") {
		if at := strings.IndexByte(fields[0], '@'); at > 0 {
			fields[0] = fields[0][:at]
		}
	}
	return strings.Join(fields, " ")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
