// Package notification delivers review notices to reviewers over an
// outbound webhook.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	appreq "github.com/gastoserp/backend/internal/application/requisition"
	"github.com/gastoserp/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// WebhookNotifier implements ReviewNotifier by POSTing the notice as
// JSON to a configured webhook endpoint.
type WebhookNotifier struct {
	webhookURL string
	recipient  string
	client     *http.Client
	logger     *zap.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier from configuration
func NewWebhookNotifier(cfg *config.NotificationConfig, logger *zap.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		webhookURL: cfg.WebhookURL,
		recipient:  cfg.Recipient,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Validate reports whether the notifier is usable. Services call this
// before mutating anything so a missing recipient surfaces as an error
// on the operation instead of a silently dropped notice.
func (n *WebhookNotifier) Validate() error {
	if n.webhookURL == "" {
		return errors.New("notification webhook URL is not configured")
	}
	if _, err := url.ParseRequestURI(n.webhookURL); err != nil {
		return fmt.Errorf("notification webhook URL is invalid: %w", err)
	}
	if n.recipient == "" {
		return errors.New("notification recipient is not configured")
	}
	return nil
}

// webhookPayload is the wire format of an outbound notice
type webhookPayload struct {
	Recipient string                     `json:"recipient"`
	Subject   string                     `json:"subject"`
	Notice    appreq.EvidenceReadyNotice `json:"notice"`
}

// Notify delivers the notice to the configured webhook
func (n *WebhookNotifier) Notify(ctx context.Context, notice appreq.EvidenceReadyNotice) error {
	body, err := json.Marshal(webhookPayload{
		Recipient: n.recipient,
		Subject:   fmt.Sprintf("Comprobante listo para revisión: %s", notice.Folio),
		Notice:    notice,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notice: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("review notice delivered",
		zap.String("folio", notice.Folio),
		zap.String("recipient", n.recipient),
	)
	return nil
}

// Ensure WebhookNotifier implements ReviewNotifier
var _ appreq.ReviewNotifier = (*WebhookNotifier)(nil)
