// Package igdb 实现基于 IGDB API 的游戏目录（core.Catalog）。
//
// 客户端特性：
//   - Twitch client-credentials 授权，令牌过期或收到 401 时自动刷新（401 仅重试一次）
//   - 客户端限流（IGDB 允许每秒 4 个请求）
//   - 熔断：连续失败后拒绝请求，返回 core.ErrCatalogUnavailable
//   - 所有方法接受 context，用于取消与超时
package igdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/metrics"
)

const (
	DefaultBaseURL = "https://api.igdb.com/v4"
	DefaultAuthURL = "https://id.twitch.tv/oauth2/token"
)

// maxErrorBodySize 限制错误信息中读取的响应体大小
const maxErrorBodySize = 64 * 1024

// readBodyForError 读取响应体用于错误信息（最多 64KB）。
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// Options 是 Client 的配置。
type Options struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
	Timeout      time.Duration
	RateLimit    float64 // 每秒请求数
	RateBurst    int

	// HTTPClient 为空时按 Timeout 创建
	HTTPClient *http.Client

	// BreakerFailures 连续失败多少次后熔断，默认 5
	BreakerFailures uint32
	// BreakerTimeout 熔断打开后多久进入半开，默认 30s
	BreakerTimeout time.Duration
}

// StatusError 表示 IGDB 返回了非 2xx 状态码。
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("igdb request failed with status %d: %s", e.StatusCode, e.Body)
}

// Client 是 IGDB API 客户端，并发安全。
type Client struct {
	http     *http.Client
	baseURL  string
	clientID string
	tokens   *tokenSource
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]byte]
}

// NewClient 创建 IGDB 客户端。
func NewClient(opts Options) (*Client, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "igdb: client id and secret are required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 4
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	metrics.SetCatalogCircuitState(0)
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "igdb-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		// 调用方取消与客户端错误（4xx）不计入失败
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state transition")
			metrics.SetCatalogCircuitState(stateToInt(to))
		},
	})

	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		clientID: opts.ClientID,
		tokens:   newTokenSource(httpClient, opts.AuthURL, opts.ClientID, opts.ClientSecret, opts.Timeout),
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		cb:       cb,
	}, nil
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// isClientError 判断是否为请求本身有误的 4xx 响应；401 与 429 不算，前者表示凭据失效，后者表示限流。
func isClientError(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500 &&
		se.StatusCode != http.StatusUnauthorized && se.StatusCode != http.StatusTooManyRequests
}

// Query 向 endpoint 发送 apicalypse 查询并返回原始 JSON 响应。
// 熔断打开或上游失败时返回 UNAVAILABLE；请求被 IGDB 判定为无效（4xx）时返回 INTERNAL_ERROR。
func (c *Client) Query(ctx context.Context, endpoint, body string) ([]byte, error) {
	data, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, body)
	})
	metrics.RecordCatalogRequest(endpoint, err)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logging.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Msg("igdb request rejected by circuit breaker")
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog: unavailable", err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if isClientError(err) {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInternalError, "igdb rejected "+endpoint+" query", err)
	}
	return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "igdb "+endpoint+" query failed", err)
}

// do 执行一次查询；收到 401 时使令牌失效并重试一次。
func (c *Client) do(ctx context.Context, endpoint, body string) ([]byte, error) {
	data, err := c.post(ctx, endpoint, body)
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
		logging.Ctx(ctx).Debug().Str("endpoint", endpoint).Msg("igdb token rejected, refreshing")
		c.tokens.Invalidate()
		return c.post(ctx, endpoint, body)
	}
	return data, err
}

func (c *Client) post(ctx context.Context, endpoint, body string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewBufferString(body))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response failed: %w", err)
	}
	return data, nil
}

// queryInto 执行查询并把 JSON 数组解码为 []T。
func queryInto[T any](ctx context.Context, c *Client, endpoint, body string) ([]T, error) {
	data, err := c.Query(ctx, endpoint, body)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInternalError, "failed to decode igdb response", err)
	}
	return out, nil
}
