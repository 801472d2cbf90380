package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Additional-Code/fleet/internal/config"
)

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, to, message string) error
}

// NewSMSSender builds the configured sender (log or http).
func NewSMSSender(cfg config.Config, logger *zap.Logger) (SMSSender, error) {
	switch cfg.SMS.Driver {
	case "log":
		return logSender{logger: logger}, nil
	case "http":
		return &httpSender{
			client:   &http.Client{Timeout: cfg.SMS.Timeout},
			url:      cfg.SMS.GatewayURL,
			apiKey:   cfg.SMS.APIKey,
			senderID: cfg.SMS.SenderID,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported sms driver: %s", cfg.SMS.Driver)
	}
}

// logSender writes messages to the log; meant for local setups.
type logSender struct {
	logger *zap.Logger
}

func (s logSender) Send(_ context.Context, to, message string) error {
	s.logger.Info("sms dispatched", zap.String("to", to), zap.String("message", message))
	return nil
}

// httpSender posts messages to an SMS gateway.
type httpSender struct {
	client   *http.Client
	url      string
	apiKey   string
	senderID string
}

type smsRequest struct {
	To       string `json:"to"`
	SenderID string `json:"senderId"`
	Message  string `json:"message"`
}

func (s *httpSender) Send(ctx context.Context, to, message string) error {
	body, err := json.Marshal(smsRequest{To: to, SenderID: s.senderID, Message: message})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}
	return nil
}
