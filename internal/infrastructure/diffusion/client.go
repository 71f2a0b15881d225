package diffusion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/basel-ax/diffusionto/internal/domain"
)

const (
	DefaultBaseURL = "https://diffusion.to"

	imagePath  = "/api/image"
	statusPath = "/api/image/status"
)

// pollInterval is the delay between two status checks in CheckAndWait
var pollInterval = 5 * time.Second

// Options configures a Client
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Client represents the diffusion.to API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	headers    http.Header
	log        zerolog.Logger
}

var _ domain.ImageGenerator = (*Client)(nil)

// NewClient creates a new diffusion.to API client authenticated with apiKey
func NewClient(apiKey string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: api key is empty", domain.ErrInvalidHeader)
	}
	bearer := "Bearer " + apiKey
	if !validHeaderValue(bearer) {
		return nil, fmt.Errorf("%w: api key contains forbidden characters", domain.ErrInvalidHeader)
	}

	headers := make(http.Header)
	headers.Set("Authorization", bearer)
	headers.Set("Accept", "application/json")

	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: client,
		baseURL:    base,
		headers:    headers,
		log:        opts.Logger,
	}, nil
}

type tokenBody struct {
	Token string `json:"token"`
}

type statusResponse struct {
	Data domain.GeneratedImage `json:"data"`
}

// RequestImage submits the request and returns the token used to check on the image
func (c *Client) RequestImage(ctx context.Context, req domain.GenerationRequest) (domain.JobToken, error) {
	resp, err := c.post(ctx, imagePath, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", &domain.UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result tokenBody
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Token == "" {
		return "", errors.New("failed to decode response: empty token")
	}

	c.log.Info().
		Str("model", req.Model().String()).
		Stringer("steps", req.Steps()).
		Msg("image requested")

	return domain.JobToken(result.Token), nil
}

// CheckStatus asks once whether the image for token is finished.
// It returns domain.ErrImageNotReady while the image is still being generated.
func (c *Client) CheckStatus(ctx context.Context, token domain.JobToken) (*domain.GeneratedImage, error) {
	resp, err := c.post(ctx, statusPath, tokenBody{Token: string(token)})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, domain.ErrImageNotReady
	case http.StatusCreated:
		var result statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return &result.Data, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.UnexpectedStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}

// CheckAndWait polls the status endpoint every five seconds until the image is
// finished. A negative maxWait polls until the image is finished or ctx ends.
// Only the not ready signal is retried, every other error is returned as is.
func (c *Client) CheckAndWait(ctx context.Context, token domain.JobToken, maxWait time.Duration) (*domain.GeneratedImage, error) {
	var deadline time.Time
	if maxWait >= 0 {
		deadline = time.Now().Add(maxWait)
	}

	for attempt := 1; ; attempt++ {
		img, err := c.CheckStatus(ctx, token)
		if err == nil {
			c.log.Info().Uint64("image_id", img.ID).Int("attempts", attempt).Msg("image finished")
			return img, nil
		}
		if !errors.Is(err, domain.ErrImageNotReady) {
			return nil, err
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil, domain.ErrTimeExpired
		}

		c.log.Debug().Int("attempt", attempt).Dur("wait", pollInterval).Msg("image not ready")

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header = c.headers.Clone()
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// validHeaderValue reports whether v may be sent as an HTTP header value
func validHeaderValue(v string) bool {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b == '\t' {
			continue
		}
		if b < ' ' || b == 0x7f {
			return false
		}
	}
	return true
}
