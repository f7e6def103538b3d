package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mbkm-console/internal/model"
)

const maxResponseBytes = 16 << 20

type Options struct {
	BaseURL string
	Timeout time.Duration
	Token   string

	// HTTPClient overrides the default client (tests). Timeout still applies when set on it.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the console REST backend. Every response is expected to use
// the {success, message, data} envelope.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
	log   *slog.Logger
}

func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api: missing base url")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base url must be absolute: %q", raw)
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{base: base, http: hc, token: strings.TrimSpace(opts.Token), log: log.With("component", "api")}, nil
}

func (c *Client) BaseURL() string { return c.base.String() }

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Pagination *model.Pagination   `json:"pagination,omitempty"`
	Statistics model.Statistics    `json:"statistics,omitempty"`
	Filters    json.RawMessage     `json:"filters,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func (c *Client) endpoint(p string, query url.Values) string {
	u := c.base.JoinPath(strings.Trim(p, "/"))
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, method, p string, query url.Values, in any) (*envelope, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, p, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, p, query, body, "application/json")
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body io.Reader, contentType string) (*envelope, error) {
	op := method + " /" + strings.Trim(p, "/")
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p, query), body)
	if err != nil {
		return nil, fmt.Errorf("api: %s: %w", op, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "request_id", reqID, "duration", time.Since(start), "error", err)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	c.log.Debug("request", "op", op, "request_id", reqID, "status", resp.StatusCode, "duration", time.Since(start), "bytes", len(raw))

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &Error{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, &Error{Status: resp.StatusCode, Message: "invalid response from server"}
	}
	if resp.StatusCode >= 400 || !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return &env, nil
}

func decodeData[T any](env *envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, &Error{Message: "invalid response data: " + err.Error()}
	}
	return out, nil
}

// CurrentSetting returns the server's active academic-period setting, or nil when none is active.
func (c *Client) CurrentSetting(ctx context.Context) (*model.Setting, error) {
	env, err := c.doJSON(ctx, http.MethodGet, "settings/current", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*model.Setting](env)
}

// Upload posts a single file as multipart/form-data together with extra form fields.
func (c *Client) Upload(ctx context.Context, p, field, filename string, r io.Reader, fields map[string]string) (json.RawMessage, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, "", fmt.Errorf("api: upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	env, err := c.do(ctx, http.MethodPost, p, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, "", err
	}
	return env.Data, env.Message, nil
}

// UploadPlaceLogo replaces a placement site's logo and returns the updated place.
func (c *Client) UploadPlaceLogo(ctx context.Context, id int, filename string, r io.Reader) (model.Place, string, error) {
	raw, msg, err := c.Upload(ctx, "places/"+model.IDString(id)+"/logo", "logo", filename, r, nil)
	if err != nil {
		return model.Place{}, "", err
	}
	var p model.Place
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p); err != nil {
			return model.Place{}, "", &Error{Message: "invalid response data: " + err.Error()}
		}
	}
	return p, msg, nil
}

func (c *Client) Registrants() *Resource[model.Registrant] {
	return NewResource[model.Registrant](c, "registrants")
}

func (c *Client) Programs() *Resource[model.Program] {
	return NewResource[model.Program](c, "programs")
}

func (c *Client) Places() *Resource[model.Place] {
	return NewResource[model.Place](c, "places")
}

func (c *Client) Settings() *Resource[model.Setting] {
	return NewResource[model.Setting](c, "settings")
}
