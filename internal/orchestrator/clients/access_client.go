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

// AccessClient validates a check-in code against the Access Provisioner.
type AccessClient interface {
	// ValidateCode calls POST /v1/access/validate. A timeout or transport
	// failure surfaces as a plain error; the caller (CheckIn) maps that to
	// a 401.
	ValidateCode(ctx context.Context, bookingID uint, code string) (bool, error)
}

type accessHTTPClient struct {
	baseURL string
	client  *httpx.Client
}

// NewAccessClient builds an AccessClient pointed at baseURL (ACCESS_URL).
func NewAccessClient(baseURL string) AccessClient {
	return &accessHTTPClient{baseURL: baseURL, client: httpx.New()}
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

func (c *accessHTTPClient) ValidateCode(ctx context.Context, bookingID uint, code string) (bool, error) {
	u := fmt.Sprintf("%s/v1/access/validate?%s", c.baseURL, url.Values{
		"bookingId": {fmt.Sprint(bookingID)},
		"code":      {code},
	}.Encode())

	log.Debug().Str("url", u).Uint("booking_id", bookingID).Msg("calling access-provisioner to validate code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Uint("booking_id", bookingID).Msg("failed to call access-provisioner")
		return false, fmt.Errorf("access-provisioner unavailable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("access-provisioner returned unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var out validateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return false, fmt.Errorf("failed to parse validate response: %w", err)
	}

	return out.Valid, nil
}
