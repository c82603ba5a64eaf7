package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenSource 提供每次请求使用的凭证
type TokenSource interface {
	Token() string
}

// StaticToken 固定 token (CLI 工具用)
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// CookieToken 从 cookie jar 中读取名为 token 的会话凭证
type CookieToken struct {
	Jar http.CookieJar
	URL *url.URL
}

func (c *CookieToken) Token() string {
	if c.Jar == nil || c.URL == nil {
		return ""
	}
	for _, ck := range c.Jar.Cookies(c.URL) {
		if ck.Name == "token" {
			return ck.Value
		}
	}
	return ""
}

// Client 平台 REST API 客户端
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	log     *zap.Logger
}

// New 创建 API 客户端。qps<=0 表示不做客户端限流。
func New(baseURL string, tokens TokenSource, timeout time.Duration, qps int, log *zap.Logger) *Client {
	// 连接池调优，轮询场景下复用连接
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100

	var limiter *rate.Limiter
	if qps > 0 {
		limiter = rate.NewLimiter(rate.Limit(qps), qps*2)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Transport: t, Timeout: timeout},
		tokens:  tokens,
		limiter: limiter,
		log:     log,
	}
}

// GetJSON 发起 GET 请求并解析 JSON 响应
func (c *Client) GetJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// PostJSON 发起 POST 请求并解析 JSON 响应
func (c *Client) PostJSON(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &TransientError{Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// UploadFile 上传单个文件 (multipart)，out 接收响应体
func (c *Client) UploadFile(ctx context.Context, path, field, filename string, content io.Reader, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return &TransientError{Err: err}
	}
	if _, err := io.Copy(part, content); err != nil {
		return &TransientError{Err: err}
	}
	if err := w.Close(); err != nil {
		return &TransientError{Err: err}
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransientError{Err: err}
		}
	}

	// 每次请求都重新读取凭证，cookie 过期后立即可见
	tok := c.tokens.Token()
	if tok == "" {
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransientError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected response: %s", bytes.TrimSpace(data)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
