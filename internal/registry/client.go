// Package registry checks plates against the external vehicle registry.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

const (
	// DefaultTimeout bound of one lookup
	DefaultTimeout = 10 * time.Second

	defaultPlateParam = "placa"
	defaultAuthHeader = "Authorization"
	defaultAuthScheme = "Bearer"

	maxBodyBytes = 1 << 20
)

// Config registry endpoint settings
type Config struct {
	BaseURL    string
	PlateParam string // query parameter carrying the plate
	APIKey     string
	AuthHeader string
	// AuthScheme prefixes the key ("Bearer <key>"). Set to "-" to send the raw key.
	AuthScheme string
	Timeout    time.Duration
}

// DefaultConfig defaults for everything but the endpoint and key
func DefaultConfig() Config {
	return Config{
		PlateParam: defaultPlateParam,
		AuthHeader: defaultAuthHeader,
		AuthScheme: defaultAuthScheme,
		Timeout:    DefaultTimeout,
	}
}

// Client registry HTTP client
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a registry client. BaseURL is required.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("registry: base URL is required")
	}
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("registry: invalid base URL: %w", err)
	}

	defaults := DefaultConfig()
	if config.PlateParam == "" {
		config.PlateParam = defaults.PlateParam
	}
	if config.AuthHeader == "" {
		config.AuthHeader = defaults.AuthHeader
	}
	if config.AuthScheme == "" {
		config.AuthScheme = defaults.AuthScheme
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// HTTPClient the underlying HTTP client
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// Lookup asks the registry about plate. It never fails: transport errors,
// timeouts, non-2xx answers and malformed bodies all yield NOT_ACTIVE.
func (c *Client) Lookup(ctx context.Context, plate string) model.Verdict {
	plate = strings.TrimSpace(plate)
	verdict := model.Verdict{Status: model.VerdictNotActive, Plate: plate}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.lookupURL(plate), nil)
	if err != nil {
		verdict.Detail = fmt.Sprintf("build request: %v", err)
		return verdict
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set(c.config.AuthHeader, c.authValue())
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		verdict.Detail = describeTransportError(reqCtx, err)
		c.logger.Warn("registry lookup failed",
			zap.String("plate", plate),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return verdict
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		verdict.Detail = fmt.Sprintf("read body: %v", err)
		return verdict
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		verdict.Detail = fmt.Sprintf("registry answered HTTP %d", resp.StatusCode)
		c.logger.Warn("registry lookup rejected",
			zap.String("plate", plate),
			zap.Int("status", resp.StatusCode))
		return verdict
	}

	verdict = Classify(plate, body)
	c.logger.Debug("registry lookup done",
		zap.String("plate", plate),
		zap.String("verdict", string(verdict.Status)),
		zap.Duration("elapsed", time.Since(start)))
	return verdict
}

// Classify decides the verdict of a successful response body. A "data" node holding
// an object with an id, or a non-empty array whose first element has an id, is ACTIVE.
func Classify(plate string, body []byte) model.Verdict {
	verdict := model.Verdict{Status: model.VerdictNotActive, Plate: plate}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		verdict.Detail = fmt.Sprintf("malformed response: %v", err)
		return verdict
	}

	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		verdict.Detail = "no data in response"
		return verdict
	}

	var record json.RawMessage
	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
			verdict.Detail = "no records in response"
			return verdict
		}
		record = items[0]
	case '{':
		record = data
	default:
		verdict.Detail = "unexpected data node"
		return verdict
	}

	if !hasID(record) {
		verdict.Detail = "record without identifier"
		return verdict
	}

	verdict.Status = model.VerdictActive
	verdict.Payload = append(json.RawMessage(nil), data...)
	return verdict
}

func hasID(record json.RawMessage) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return false
	}
	id, ok := fields["id"]
	if !ok {
		return false
	}
	id = bytes.TrimSpace(id)
	return len(id) > 0 && !bytes.Equal(id, []byte("null")) && !bytes.Equal(id, []byte(`""`))
}

func (c *Client) lookupURL(plate string) string {
	u, _ := url.Parse(c.config.BaseURL)
	q := u.Query()
	q.Set(c.config.PlateParam, plate)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) authValue() string {
	if c.config.AuthScheme == "-" {
		return c.config.APIKey
	}
	return c.config.AuthScheme + " " + c.config.APIKey
}

func describeTransportError(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return "registry lookup timed out"
	}
	if errors.Is(err, context.Canceled) {
		return "registry lookup canceled"
	}
	return fmt.Sprintf("registry unreachable: %v", err)
}

// Disabled verifier used when no registry is configured
type Disabled struct{}

// Lookup answers UNVERIFIED without any I/O.
func (Disabled) Lookup(ctx context.Context, plate string) model.Verdict {
	return model.Verdict{
		Status: model.VerdictUnverified,
		Plate:  strings.TrimSpace(plate),
		Detail: "registry lookup disabled",
	}
}
