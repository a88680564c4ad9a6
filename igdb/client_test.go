package igdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rushteam/gamerec/core"
)

// fakeIGDB 模拟 Twitch 授权端点与 IGDB games 端点。
type fakeIGDB struct {
	t *testing.T

	authCalls   atomic.Int32
	gamesCalls  atomic.Int32
	rejectFirst atomic.Bool  // 第一次 games 请求返回 401
	failStatus  atomic.Int32 // 非 0 时 games 请求返回该状态码

	authGate    chan struct{} // 非空时授权请求阻塞到其关闭
	authEntered atomic.Int32

	mu     sync.Mutex
	bodies []string
	games  string // games 端点返回的 JSON
}

func (f *fakeIGDB) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if f.authGate != nil {
			f.authEntered.Add(1)
			<-f.authGate
		}
		q := r.URL.Query()
		if q.Get("client_id") != "id" || q.Get("client_secret") != "secret" || q.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := f.authCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok`+string(rune('0'+n))+`","expires_in":3600,"token_type":"bearer"}`)
	})
	mux.HandleFunc("/v4/games", func(w http.ResponseWriter, r *http.Request) {
		f.gamesCalls.Add(1)
		if r.Header.Get("Client-ID") != "id" || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if f.rejectFirst.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if code := f.failStatus.Load(); code != 0 {
			w.WriteHeader(int(code))
			_, _ = io.WriteString(w, "upstream down")
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(body))
		games := f.games
		f.mu.Unlock()
		_, _ = io.WriteString(w, games)
	})
	return mux
}

func (f *fakeIGDB) lastBody() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

func newTestCatalog(t *testing.T, f *fakeIGDB, opts Options) *Catalog {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	opts.ClientID = "id"
	opts.ClientSecret = "secret"
	opts.BaseURL = srv.URL + "/v4"
	opts.AuthURL = srv.URL + "/oauth2/token"
	opts.RateLimit = 1000
	opts.RateBurst = 100
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return NewCatalog(client)
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := NewClient(Options{ClientID: "id"}); !core.IsInvalidInput(err) {
		t.Errorf("NewClient() error = %v, want invalid input", err)
	}
}

func TestCatalog_FetchItemsByIDs(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[
		{"id": 7334, "name": "Bloodborne", "genres": [12, 31], "themes": [1, 17, 19, 38], "player_perspectives": [2], "first_release_date": 1427155200},
		{"id": 119133, "name": "Elden Ring", "genres": [12, 31], "themes": [1, 17, 38], "player_perspectives": [2]}
	]`}
	cat := newTestCatalog(t, f, Options{})

	games, err := cat.FetchItemsByIDs(context.Background(), []uint64{7334, 119133})
	if err != nil {
		t.Fatalf("FetchItemsByIDs() error = %v", err)
	}
	if len(games) != 2 || games[0].Name != "Bloodborne" || len(games[0].Themes) != 4 || games[0].FirstReleaseDate != 1427155200 {
		t.Errorf("games = %+v", games)
	}
	if got := f.lastBody(); got != gamesByIDsQuery([]uint64{7334, 119133}) {
		t.Errorf("query body = %q", got)
	}

	// 令牌被缓存
	if _, err := cat.FetchItemsByIDs(context.Background(), []uint64{7334}); err != nil {
		t.Fatal(err)
	}
	if n := f.authCalls.Load(); n != 1 {
		t.Errorf("auth calls = %d, want 1", n)
	}

	if games, err := cat.FetchItemsByIDs(context.Background(), nil); err != nil || games != nil {
		t.Errorf("FetchItemsByIDs(nil) = %v, %v", games, err)
	}
}

func TestCatalog_FetchSimilarItems(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[
		{"id": 7334, "similar_games": [{"id": 1, "name": "A", "genres": [12]}, {"id": 2, "name": "B"}]},
		{"id": 119133, "similar_games": [{"id": 2, "name": "B2"}, {"id": 3, "name": "C"}]},
		{"id": 125764}
	]`}
	cat := newTestCatalog(t, f, Options{})

	games, err := cat.FetchSimilarItems(context.Background(), []uint64{7334, 119133, 125764})
	if err != nil {
		t.Fatalf("FetchSimilarItems() error = %v", err)
	}
	want := []string{"A", "B", "C"}
	if len(games) != len(want) {
		t.Fatalf("games = %+v", games)
	}
	for i, name := range want {
		if games[i].Name != name {
			t.Errorf("games[%d].Name = %q, want %q", i, games[i].Name, name)
		}
	}
}

func TestCatalog_FetchByAttributeFilter(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[{"id": 5, "name": "X"}]`}
	cat := newTestCatalog(t, f, Options{})

	games, err := cat.FetchByAttributeFilter(context.Background(), core.AttributeFilter{})
	if err != nil || games != nil {
		t.Errorf("empty filter = %v, %v", games, err)
	}
	if n := f.gamesCalls.Load(); n != 0 {
		t.Errorf("empty filter sent %d requests", n)
	}

	filter := core.AttributeFilter{Genres: []uint64{4}, MinRating: 6, Limit: 500}
	games, err = cat.FetchByAttributeFilter(context.Background(), filter)
	if err != nil || len(games) != 1 {
		t.Errorf("FetchByAttributeFilter() = %v, %v", games, err)
	}
	if got := f.lastBody(); got != attributeFilterQuery(filter) {
		t.Errorf("query body = %q", got)
	}
}

func TestCatalog_RetryOnUnauthorized(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[{"id": 1, "name": "Zelda", "first_release_date": 1}]`}
	f.rejectFirst.Store(true)
	cat := newTestCatalog(t, f, Options{})

	games, err := cat.SearchGames(context.Background(), "zelda")
	if err != nil {
		t.Fatalf("SearchGames() error = %v", err)
	}
	if len(games) != 1 || games[0].Name != "Zelda" {
		t.Errorf("games = %+v", games)
	}
	if n := f.authCalls.Load(); n != 2 {
		t.Errorf("auth calls = %d, want 2 (initial + refresh after 401)", n)
	}
	if n := f.gamesCalls.Load(); n != 2 {
		t.Errorf("games calls = %d, want 2", n)
	}
}

func TestCatalog_CircuitBreaker(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[]`}
	f.failStatus.Store(http.StatusInternalServerError)
	cat := newTestCatalog(t, f, Options{BreakerFailures: 2, BreakerTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cat.FetchItemsByIDs(ctx, []uint64{1})
		if !core.IsUnavailable(err) {
			t.Fatalf("attempt %d error = %v, want unavailable", i, err)
		}
		if !strings.Contains(err.Error(), "upstream down") {
			t.Errorf("error should carry response body: %v", err)
		}
	}

	calls := f.gamesCalls.Load()
	_, err := cat.FetchItemsByIDs(ctx, []uint64{1})
	if !core.IsUnavailable(err) {
		t.Errorf("open breaker error = %v, want unavailable", err)
	}
	if f.gamesCalls.Load() != calls {
		t.Error("open breaker should not reach the server")
	}
}

func TestTokenSource_Expiry(t *testing.T) {
	f := &fakeIGDB{t: t}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	now := time.Unix(1_700_000_000, 0)
	ts := newTokenSource(srv.Client(), srv.URL+"/oauth2/token", "id", "secret", 5*time.Second)
	ts.now = func() time.Time { return now }

	ctx := context.Background()
	tok, err := ts.AccessToken(ctx)
	if err != nil || tok != "tok1" {
		t.Fatalf("AccessToken() = %q, %v", tok, err)
	}

	now = now.Add(3599 * time.Second)
	if tok, _ := ts.AccessToken(ctx); tok != "tok1" {
		t.Errorf("token before expiry = %q, want tok1", tok)
	}

	now = now.Add(time.Second)
	if tok, _ := ts.AccessToken(ctx); tok != "tok2" {
		t.Errorf("token after expiry = %q, want tok2", tok)
	}

	ts.Invalidate()
	if tok, _ := ts.AccessToken(ctx); tok != "tok3" {
		t.Errorf("token after invalidate = %q, want tok3", tok)
	}
}

func TestTokenSource_AuthFailure(t *testing.T) {
	f := &fakeIGDB{t: t}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	ts := newTokenSource(srv.Client(), srv.URL+"/oauth2/token", "id", "wrong", 5*time.Second)
	if _, err := ts.AccessToken(context.Background()); err == nil {
		t.Error("AccessToken() expected error for bad credentials")
	}
}

func TestCatalog_ClientErrorIsNotUnavailable(t *testing.T) {
	f := &fakeIGDB{t: t, games: `[]`}
	f.failStatus.Store(http.StatusBadRequest)
	cat := newTestCatalog(t, f, Options{BreakerFailures: 1, BreakerTimeout: time.Hour})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := cat.FetchItemsByIDs(ctx, []uint64{1})
		if core.IsUnavailable(err) {
			t.Fatalf("attempt %d error = %v, want a non-unavailable error", i, err)
		}
		if de := core.GetDomainError(err); de == nil || de.Code != core.ErrorCodeInternalError {
			t.Fatalf("attempt %d error = %v, want %s", i, err, core.ErrorCodeInternalError)
		}
	}
	// 4xx 不触发熔断，每次都到达服务端
	if n := f.gamesCalls.Load(); n != 3 {
		t.Errorf("games calls = %d, want 3", n)
	}
}

func TestTokenSource_CancelledWaiterDoesNotFailOthers(t *testing.T) {
	f := &fakeIGDB{t: t, authGate: make(chan struct{})}
	srv := httptest.NewServer(f.handler())
	defer srv.Close()
	released := false
	release := func() {
		if !released {
			released = true
			close(f.authGate)
		}
	}
	defer release()

	ts := newTokenSource(srv.Client(), srv.URL+"/oauth2/token", "id", "secret", 5*time.Second)

	type result struct {
		tok string
		err error
	}
	first := make(chan result, 1)
	ctx1, cancel1 := context.WithCancel(context.Background())
	go func() {
		tok, err := ts.AccessToken(ctx1)
		first <- result{tok, err}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for f.authEntered.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("auth request never started")
		}
		time.Sleep(time.Millisecond)
	}

	second := make(chan result, 1)
	go func() {
		tok, err := ts.AccessToken(context.Background())
		second <- result{tok, err}
	}()

	cancel1()
	if r := <-first; !errors.Is(r.err, context.Canceled) {
		t.Errorf("cancelled caller = (%q, %v), want context.Canceled", r.tok, r.err)
	}

	release()
	r := <-second
	if r.err != nil || r.tok != "tok1" {
		t.Errorf("other caller = (%q, %v), want tok1", r.tok, r.err)
	}
	if n := f.authCalls.Load(); n != 1 {
		t.Errorf("auth calls = %d, want 1", n)
	}
}
