// Package server 提供推荐服务的 HTTP 接口（chi 路由）。
//
//	GET  /search_game?name=   按名称搜索游戏
//	POST /recommend?top_n=    根据评分返回推荐，top_n 可选
//	GET  /healthz             存活检查
//	GET  /metrics             Prometheus 指标
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/service"
)

// Recommender 是 HTTP 层依赖的推荐能力，由 service.Recommender 实现。
type Recommender interface {
	Recommend(ctx context.Context, ratingByID map[uint64]float64, opts ...service.RecommendOption) ([]*core.Item, error)
	SearchGames(ctx context.Context, name string) ([]core.Game, error)
}

// Options 是 HTTP 层配置。
type Options struct {
	CORSOrigins       []string
	RateLimitRequests int // <= 0 关闭限流
	RateLimitWindow   time.Duration
	// MaxBodyBytes 请求体上限，默认 1MB
	MaxBodyBytes int64
	// MaxRatings 单次推荐请求的最大评分数，默认 500
	MaxRatings int
}

// Server 持有处理器依赖。
type Server struct {
	rec      Recommender
	opts     Options
	validate *validator.Validate
}

// New 创建 Server。
func New(rec Recommender, opts Options) *Server {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if opts.MaxRatings <= 0 {
		opts.MaxRatings = 500
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	return &Server{
		rec:      rec,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Router 返回配置好中间件与路由的 http.Handler。
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitRequests > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimitRequests, s.opts.RateLimitWindow))
		}
		r.Get("/search_game", s.handleSearchGame)
		r.Post("/recommend", s.handleRecommend)
	})
	return r
}

// requestIDWithLogging 读取或生成 X-Request-ID，写入 context 与响应头。
func requestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := logging.ContextWithRequestID(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
