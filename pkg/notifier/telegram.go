package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TelegramSender delivers alerts to a Telegram chat via the Bot API.
type TelegramSender struct {
	token   string
	baseURL string
	client  *http.Client
}

func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		token:   token,
		baseURL: "https://api.telegram.org/bot" + token,
		client:  &http.Client{},
	}
}

// Send posts the message to the chat identified by destination.
func (s *TelegramSender) Send(ctx context.Context, destination, message string) error {
	endpoint := s.baseURL + "/sendMessage"

	params := url.Values{}
	params.Add("chat_id", destination)
	params.Add("text", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}

	return nil
}
