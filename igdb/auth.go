package igdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/rushteam/gamerec/logging"
)

// Token 是 Twitch client-credentials 授权返回的访问令牌。
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // 秒
	TokenType   string `json:"token_type"`
}

// tokenSource 缓存访问令牌，过期或被判定失效时刷新。并发刷新合并为一次请求。
type tokenSource struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string
	timeout      time.Duration // 单次刷新的超时，与调用方的取消无关
	now          func() time.Time

	mu          sync.RWMutex
	token       Token
	refreshedAt time.Time

	group singleflight.Group
}

func newTokenSource(httpClient *http.Client, authURL, clientID, clientSecret string, timeout time.Duration) *tokenSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &tokenSource{
		httpClient:   httpClient,
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		timeout:      timeout,
		now:          time.Now,
	}
}

// current 返回缓存的令牌；令牌为空或自刷新起经过的时间不小于 expires_in 时视为无效。
func (s *tokenSource) current() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token.AccessToken == "" {
		return "", false
	}
	if s.now().Sub(s.refreshedAt) >= time.Duration(s.token.ExpiresIn)*time.Second {
		return "", false
	}
	return s.token.AccessToken, true
}

// AccessToken 返回当前有效的令牌，必要时刷新。
// 刷新在独立于调用方取消的 context 中进行；调用方取消只让自己提前返回，不影响同时等待的其他请求。
func (s *tokenSource) AccessToken(ctx context.Context) (string, error) {
	if tok, ok := s.current(); ok {
		return tok, nil
	}
	ch := s.group.DoChan("token", func() (any, error) {
		if tok, ok := s.current(); ok {
			return tok, nil
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return s.refresh(rctx)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate 丢弃当前令牌，下次调用 AccessToken 时重新授权。
func (s *tokenSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = Token{}
}

func (s *tokenSource) refresh(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("client_secret", s.clientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.authURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create auth request failed: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("auth response has no access token")
	}

	s.mu.Lock()
	s.token = tok
	s.refreshedAt = s.now()
	s.mu.Unlock()

	logging.Debug().Int64("expires_in", tok.ExpiresIn).Msg("igdb access token refreshed")
	return tok.AccessToken, nil
}
