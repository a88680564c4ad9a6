// Command gamerec 启动游戏推荐 HTTP 服务。
//
// 配置加载顺序：.env -> 默认值 -> config.yaml（或 CONFIG_PATH）-> 环境变量。
// 收到 SIGINT / SIGTERM 时优雅退出。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rushteam/gamerec/catalog"
	"github.com/rushteam/gamerec/config"
	_ "github.com/rushteam/gamerec/config/builders"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/feature"
	"github.com/rushteam/gamerec/igdb"
	"github.com/rushteam/gamerec/logging"
	"github.com/rushteam/gamerec/model"
	"github.com/rushteam/gamerec/pipeline"
	"github.com/rushteam/gamerec/server"
	"github.com/rushteam/gamerec/service"
	"github.com/rushteam/gamerec/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("gamerec exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, closeCache, err := buildCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	vocab := feature.DefaultGameVocabulary()
	if cfg.Recommend.VocabularyPath != "" {
		if vocab, err = feature.LoadVocabulary(cfg.Recommend.VocabularyPath); err != nil {
			return err
		}
	}
	policy, err := model.ParseRatingPolicy(cfg.Recommend.NegativeRatings)
	if err != nil {
		return err
	}

	pcfg, err := config.LoadPipelineConfig(cfg.Recommend)
	if err != nil {
		return err
	}
	p, err := pcfg.BuildPipeline(config.DefaultFactory(), &pipeline.Env{
		Catalog:    cat,
		Vocabulary: vocab,
		Recall:     cfg.Recommend,
	})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	rec, err := service.NewRecommender(service.Config{
		Catalog:         cat,
		Pipeline:        p,
		Vocabulary:      vocab,
		Policy:          policy,
		PrefetchTimeout: cfg.Recommend.RecallTimeout,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: server.New(rec, server.Options{
			CORSOrigins:       cfg.Server.CORSOrigins,
			RateLimitRequests: cfg.Server.RateLimitRequests,
			RateLimitWindow:   cfg.Server.RateLimitWindow,
		}).Router(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().
			Str("addr", srv.Addr).
			Str("catalog", cfg.Catalog.Backend).
			Str("cache", cfg.Cache.Backend).
			Int("vocabulary", vocab.Size()).
			Strs("pipeline", pcfg.NodeTypes()).
			Msg("gamerec listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildCatalog 创建目录并按配置包一层缓存；返回的 close 释放缓存连接。
func buildCatalog(ctx context.Context, cfg *config.AppConfig) (core.Catalog, func(), error) {
	var cat core.Catalog
	switch cfg.Catalog.Backend {
	case "static":
		s, err := catalog.LoadStatic(cfg.Catalog.StaticPath)
		if err != nil {
			return nil, nil, err
		}
		cat = s
	default:
		client, err := igdb.NewClient(igdb.Options{
			ClientID:     cfg.IGDB.ClientID,
			ClientSecret: cfg.IGDB.ClientSecret,
			BaseURL:      cfg.IGDB.BaseURL,
			AuthURL:      cfg.IGDB.AuthURL,
			Timeout:      cfg.IGDB.Timeout,
			RateLimit:    cfg.IGDB.RateLimit,
			RateBurst:    cfg.IGDB.RateBurst,
		})
		if err != nil {
			return nil, nil, err
		}
		cat = igdb.NewCatalog(client)
	}

	noop := func() {}
	switch cfg.Cache.Backend {
	case "memory":
		ms := store.NewMemoryStore()
		return store.NewCachedCatalog(cat, ms, cfg.Cache.TTL), func() { _ = ms.Close() }, nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:      cfg.Cache.RedisAddr,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: "gamerec:",
		})
		if err != nil {
			return nil, nil, err
		}
		return store.NewCachedCatalog(cat, rs, cfg.Cache.TTL), func() { _ = rs.Close() }, nil
	default:
		return cat, noop, nil
	}
}
