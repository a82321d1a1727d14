package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/samnasalta/orderbot-backend/pkg/logger"
)

// TelegramGateway delivers messages through the Telegram Bot API sendMessage
// endpoint. The request timeout bounds how long a status transition can spend
// on its notification side effect.
type TelegramGateway struct {
	baseURL  string
	botToken string
	client   *http.Client
}

func NewTelegramGateway(baseURL, botToken string, timeout time.Duration) *TelegramGateway {
	return &TelegramGateway{
		baseURL:  baseURL,
		botToken: botToken,
		client:   &http.Client{Timeout: timeout},
	}
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (g *TelegramGateway) Send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", g.baseURL, g.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call Telegram API: %w", err)
	}
	defer resp.Body.Close()

	var apiResp sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode Telegram response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram send rejected: %s", apiResp.Description)
	}

	logger.Debug("Notification sent", map[string]interface{}{
		"chat_id": chatID,
	})
	return nil
}
