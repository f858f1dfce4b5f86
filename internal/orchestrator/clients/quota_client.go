package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"studio-booking/internal/httpx"
)

// QuotaClient commits a held quota reservation on check-out. A failure
// here is best-effort and non-fatal: the caller logs and proceeds to
// FINISHED regardless.
type QuotaClient interface {
	Commit(ctx context.Context, reservationID string) (bool, error)
}

type quotaHTTPClient struct {
	baseURL string
	client  *httpx.Client
}

// NewQuotaClient builds a QuotaClient pointed at baseURL (QUOTA_URL).
func NewQuotaClient(baseURL string) QuotaClient {
	return &quotaHTTPClient{baseURL: baseURL, client: httpx.New()}
}

type okResponse struct {
	OK bool `json:"ok"`
}

func (c *quotaHTTPClient) Commit(ctx context.Context, reservationID string) (bool, error) {
	u := fmt.Sprintf("%s/v1/quotas/commit?%s", c.baseURL, url.Values{
		"reservationId": {reservationID},
	}.Encode())

	log.Debug().Str("url", u).Str("reservation_id", reservationID).Msg("calling quota-accountant to commit reservation")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Msg("failed to call quota-accountant")
		return false, fmt.Errorf("quota-accountant unavailable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("quota-accountant returned unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out okResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to parse commit response: %w", err)
	}

	return out.OK, nil
}
