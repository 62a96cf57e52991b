package tasks

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// TaskHTTPRequest — идентификатор HTTP задачи.
	TaskHTTPRequest = "http.request"

	defaultHTTPTimeout = 30 * time.Second
	maxResponseBody    = 10 * 1024 * 1024 // 10 MB
)

// Ключи payload HTTP задачи.
const (
	keyMethod          = "method"
	keyURL             = "url"
	keyHeaders         = "headers"
	keyBody            = "body"
	keyFollowRedirects = "follow_redirects"
	keyValidateSSL     = "validate_ssl"
	keyTimeoutSec      = "timeout_sec"
)

// HTTPTask — обработчик HTTP запросов.
//
// Payload:
//
//	{
//	    "method": "POST",
//	    "url": "https://api.example.com/data",
//	    "headers": {"Authorization": "Bearer xxx"},
//	    "body": {"key": "value"},
//	    "follow_redirects": true,
//	    "validate_ssl": true,
//	    "timeout_sec": 30
//	}
//
// Output:
//
//	{
//	    "status_code": 200,
//	    "headers": {"Content-Type": "application/json", ...},
//	    "body": {...}  // parsed JSON or string
//	}
type HTTPTask struct{}

// NewHTTPTask создаёт новый HTTPTask.
func NewHTTPTask() *HTTPTask {
	return &HTTPTask{}
}

// httpConfig — распарсенный payload HTTP задачи.
type httpConfig struct {
	Method          string
	URL             string
	Headers         map[string]string
	Body            any
	FollowRedirects bool
	ValidateSSL     bool
	TimeoutSec      int
}

// Handle выполняет HTTP запрос.
func (t *HTTPTask) Handle(ctx context.Context, input map[string]any) (map[string]any, error) {
	cfg, err := t.parseConfig(input)
	if err != nil {
		return nil, err
	}

	client := t.buildClient(cfg)

	req, err := t.buildRequest(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	return t.parseResponse(resp)
}

// parseConfig парсит payload HTTP задачи.
func (t *HTTPTask) parseConfig(input map[string]any) (*httpConfig, error) {
	cfg := &httpConfig{
		Method:          GetString(input, keyMethod),
		URL:             GetString(input, keyURL),
		Headers:         GetMapString(input, keyHeaders),
		Body:            input[keyBody],
		FollowRedirects: GetBool(input, keyFollowRedirects, true),
		ValidateSSL:     GetBool(input, keyValidateSSL, true),
		TimeoutSec:      GetInt(input, keyTimeoutSec),
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidInput, TaskHTTPRequest)
	}

	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)

	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}

	return cfg, nil
}

// buildClient создаёт HTTP клиент с нужными настройками.
func (t *HTTPTask) buildClient(cfg *httpConfig) *http.Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSec > 0 {
		timeout = time.Duration(cfg.TimeoutSec) * time.Second
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: !cfg.ValidateSSL,
	}

	var checkRedirect func(*http.Request, []*http.Request) error
	if !cfg.FollowRedirects {
		checkRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: checkRedirect,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
		},
	}
}

// buildRequest создаёт HTTP запрос.
func (t *HTTPTask) buildRequest(ctx context.Context, cfg *httpConfig) (*http.Request, error) {
	var bodyReader io.Reader

	if cfg.Body != nil {
		bodyBytes, err := t.serializeBody(cfg.Body)
		if err != nil {
			return nil, fmt.Errorf("serialize body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)

		if _, hasContentType := cfg.Headers["Content-Type"]; !hasContentType {
			cfg.Headers["Content-Type"] = "application/json"
		}
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, cfg.URL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// serializeBody сериализует body в bytes.
func (t *HTTPTask) serializeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// parseResponse парсит HTTP ответ в output задачи.
func (t *HTTPTask) parseResponse(resp *http.Response) (map[string]any, error) {
	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var body any
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.Unmarshal(bodyBytes, &body); err != nil {
			// Невалидный JSON возвращаем как строку
			body = string(bodyBytes)
		}
	} else {
		body = string(bodyBytes)
	}

	headers := make(map[string]string)
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"headers":     headers,
		"body":        body,
	}, nil
}
