package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pursueapp/recap-engine/internal/core/domain"
)

// HTTPPushSender forwards push requests to the delivery service. The engine
// does not speak to device push gateways itself; delivery owns retries,
// device tokens, and failure logging.
type HTTPPushSender struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPushSender(endpoint string) *HTTPPushSender {
	return &HTTPPushSender{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *HTTPPushSender) Push(ctx context.Context, req domain.PushRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("push sender: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push sender: failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("push sender: delivery service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push sender: delivery service returned %d", resp.StatusCode)
	}
	return nil
}

// LogPushSender is the local-dev stand-in: it only logs what would be sent.
type LogPushSender struct{}

func NewLogPushSender() *LogPushSender {
	return &LogPushSender{}
}

func (s *LogPushSender) Push(ctx context.Context, req domain.PushRequest) error {
	log.Printf("[PUSH] to %d users: %s — %s", len(req.UserIDs), req.Title, req.Body)
	return nil
}
