package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"framesight/internal/services"
)

const (
	defaultHTTPTimeout    = 5 * time.Minute
	defaultPollInterval   = 2 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second

	fileStateProcessing = "PROCESSING"
	fileStateActive     = "ACTIVE"
)

// Config captures the runtime settings required to talk to the analysis service.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
	PollSeconds    int
}

// Client talks to a hosted video-understanding service: it uploads the video,
// waits for ingestion, prompts for the structured analysis, and parses the
// model's JSON reply.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	pollInterval     time.Duration
	sleeper          func(context.Context, time.Duration) error
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithPollInterval overrides the upload-state poll interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithSleeper overrides how waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewClient constructs an analysis client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	poll := defaultPollInterval
	if cfg.PollSeconds > 0 {
		poll = time.Duration(cfg.PollSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
			PollSeconds:    cfg.PollSeconds,
		},
		httpClient:       &http.Client{Timeout: timeout},
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		pollInterval:     poll,
		sleeper:          sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("analyzer request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Analyze uploads the video, waits for the service to ingest it, and requests
// the structured whole-video analysis. The uploaded file is deleted on a
// best-effort basis before returning.
func (c *Client) Analyze(ctx context.Context, videoPath string) (*Analysis, error) {
	if c.cfg.APIKey == "" {
		return nil, services.Wrap(services.ErrUnavailable, "semantic", "analyze", "analyzer api key not configured", nil)
	}
	if c.cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrUnavailable, "semantic", "analyze", "analyzer base url not configured", nil)
	}

	fileName, err := c.upload(ctx, videoPath)
	if err != nil {
		return nil, err
	}
	defer c.deleteFile(fileName)

	if err := c.waitForActive(ctx, fileName); err != nil {
		return nil, err
	}

	text, err := c.generateWithRetry(ctx, fileName)
	if err != nil {
		return nil, err
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalService, "semantic", "parse", "analysis payload unusable", err)
	}
	return analysis, nil
}

func (c *Client) upload(ctx context.Context, videoPath string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "semantic", "upload", "open video", err)
	}
	defer file.Close()

	endpoint, err := url.JoinPath(c.cfg.BaseURL, "files")
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "upload", "build url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, file)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "upload", "new request", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	c.authorize(req)

	var uploaded struct {
		File struct {
			Name  string `json:"name"`
			State string `json:"state"`
		} `json:"file"`
	}
	if err := c.doJSON(req, &uploaded); err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "upload", "analysis service rejected video", err)
	}
	if uploaded.File.Name == "" {
		return "", services.Wrap(services.ErrExternalService, "semantic", "upload", "service returned no file name", nil)
	}
	return uploaded.File.Name, nil
}

func (c *Client) waitForActive(ctx context.Context, fileName string) error {
	for {
		state, err := c.fileState(ctx, fileName)
		if err != nil {
			return err
		}
		switch state {
		case fileStateActive:
			return nil
		case fileStateProcessing:
			if err := c.sleeper(ctx, c.pollInterval); err != nil {
				return services.Wrap(services.ErrTimeout, "semantic", "ingest", "canceled while waiting for ingestion", err)
			}
		default:
			return services.Wrap(services.ErrExternalService, "semantic", "ingest",
				fmt.Sprintf("video ingestion ended in state %s", state), nil)
		}
	}
}

func (c *Client) fileState(ctx context.Context, fileName string) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, fileName)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "ingest", "build url", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "ingest", "new request", err)
	}
	c.authorize(req)

	var status struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if err := c.doJSON(req, &status); err != nil {
		return "", services.Wrap(services.ErrExternalService, "semantic", "ingest", "poll upload state", err)
	}
	return status.State, nil
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generation_config"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text    string    `json:"text,omitempty"`
	FileRef *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	FileURI string `json:"file_uri"`
}

type genConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finish_reason"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) generateWithRetry(ctx context.Context, fileName string) (string, error) {
	attempts := c.retryAttempts()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.generateOnce(ctx, fileName)
		if err == nil {
			return text, nil
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return "", services.Wrap(services.ErrExternalService, "semantic", "generate", "analysis request failed", err)
		}
		if sleepErr := c.sleeper(ctx, delay); sleepErr != nil {
			return "", services.Wrap(services.ErrTimeout, "semantic", "generate", "canceled during retry wait", sleepErr)
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return "", services.Wrap(services.ErrExternalService, "semantic", "generate",
		fmt.Sprintf("failed after %d attempts", attempts), lastErr)
}

func (c *Client) generateOnce(ctx context.Context, fileName string) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: AnalysisPrompt},
				{FileRef: &fileData{FileURI: fileName}},
			},
		}},
		Config: genConfig{Temperature: 0.3},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	var response generateResponse
	if err := c.doJSON(req, &response); err != nil {
		return "", err
	}
	if response.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(response.Error.Message))
	}
	for _, candidate := range response.Candidates {
		for _, p := range candidate.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", errors.New("empty analysis response")
}

func (c *Client) deleteFile(fileName string) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, fileName)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return
	}
	c.authorize(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("X-API-Key", c.cfg.APIKey)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil {
		return 0, false
	}
	if ctx == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return statusErr.RetryAfter, true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	// Network-level failures retry; parse failures do not.
	if strings.Contains(err.Error(), "http error") {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.retryBaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.retryMaxDelay && c.retryMaxDelay > 0 {
			return c.retryMaxDelay
		}
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func parseRetryAfter(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(header); err == nil {
		if delta := time.Until(when); delta > 0 {
			return delta, true
		}
	}
	return 0, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
