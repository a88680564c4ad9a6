package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/service"
)

// GameRef 引用一个游戏，只需要 ID；客户端回传的其他字段被忽略。
type GameRef struct {
	ID uint64 `json:"id" validate:"required"`
}

// RatingRequest 是 /recommend 请求体中的一项。
type RatingRequest struct {
	Game   GameRef  `json:"game" validate:"required"`
	Rating *float64 `json:"rating" validate:"required"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchGame(w http.ResponseWriter, r *http.Request) {
	games, err := s.rec.SearchGames(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if games == nil {
		games = []core.Game{}
	}
	respondJSON(w, r, http.StatusOK, games)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var opts []service.RecommendOption
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, "top_n must be a positive integer", err)
			return
		}
		opts = append(opts, service.WithTopN(n))
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, core.ErrorCodeInvalidInput, "request body too large", err)
			return
		}
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, "failed to read request body", err)
		return
	}
	var reqs []RatingRequest
	if err := json.Unmarshal(body, &reqs); err != nil {
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, "request body must be a JSON array of {game: {id}, rating}", err)
		return
	}

	ratings, err := s.toRatings(reqs)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, core.ErrorCodeInvalidInput, err.Error(), err)
		return
	}

	items, err := s.rec.Recommend(r.Context(), ratings, opts...)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, core.Scored(items))
}

// toRatings 校验请求并转换为 游戏ID -> 评分；同一游戏出现多次视为无效请求。
func (s *Server) toRatings(reqs []RatingRequest) (map[uint64]float64, error) {
	if len(reqs) > s.opts.MaxRatings {
		return nil, fmt.Errorf("at most %d ratings per request", s.opts.MaxRatings)
	}
	ratings := make(map[uint64]float64, len(reqs))
	for i := range reqs {
		if err := s.validate.Struct(&reqs[i]); err != nil {
			return nil, fmt.Errorf("rating %d: game id and rating are required", i)
		}
		id := reqs[i].Game.ID
		if _, dup := ratings[id]; dup {
			return nil, fmt.Errorf("game %d rated more than once", id)
		}
		ratings[id] = *reqs[i].Rating
	}
	return ratings, nil
}
