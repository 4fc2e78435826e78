/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mikeb26/fidecompare/compare"
	"github.com/mikeb26/fidecompare/fide"
	"github.com/mikeb26/fidecompare/ratings"
	"github.com/mikeb26/fidecompare/report"
)

// Provider is the subset of *fide.Client the dashboard needs.
type Provider interface {
	compare.HistorySource
	compare.StatsSource
	compare.NameResolver
	Search(ctx context.Context, keyword string) ([]fide.SearchPlayer, error)
}

type Server struct {
	provider      Provider
	loader        *compare.Loader
	palette       compare.Palette
	defaultPlayer compare.Player
	shareBase     string
	metrics       http.Handler
}

type Options struct {
	Palette       compare.Palette
	DefaultPlayer compare.Player

	// ShareBaseURL is the public address of the dashboard; when empty it is
	// derived from each request.
	ShareBaseURL string
	Metrics      http.Handler
}

func NewServer(provider Provider, options Options) *Server {
	if options.Palette.Len() == 0 {
		options.Palette = compare.DefaultPalette()
	}
	return &Server{
		provider:      provider,
		loader:        &compare.Loader{History: provider, Stats: provider, Logf: log.Printf},
		palette:       options.Palette,
		defaultPlayer: options.DefaultPlayer,
		shareBase:     options.ShareBaseURL,
		metrics:       options.Metrics,
	}
}

// Routes returns the dashboard's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleDashboard)
	r.Get("/players/add", s.handleAdd)
	r.Get("/players/remove", s.handleRemove)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/players/{id}/history", s.handleHistory)
		r.Get("/compare/{id1}/{id2}", s.handleCompare)
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	return r
}

// ListenAndServe serves until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("web: dashboard listening on %v", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web: serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("web: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: serve: %w", err)
	}
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	rt, err := ratings.ParseRatingType(r.URL.Query().Get("type"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	list := compare.NewList(s.palette, nil)
	list.Logf = log.Printf
	if err := list.Hydrate(r.Context(), r.URL.RawQuery, s.defaultPlayer, s.provider); err != nil {
		log.Printf("web.dashboard: %v", err)
		return
	}

	d := s.loader.Load(r.Context(), list.Players(), rt)
	shareURL, err := list.ShareURL(s.shareBaseFor(r))
	if err != nil {
		log.Printf("web.dashboard: %v", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderDashboard(w, d, report.Options{ShareURL: shareURL}); err != nil {
		log.Printf("web.dashboard: %v", err)
	}
}

// handleAdd and handleRemove apply a list change to the list named by the
// request's id parameter and redirect to the synced query, which rewrites
// the address without keeping the old state in the history.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mutate(w, r, func(list *compare.List) {
		list.Add(compare.SearchResult{ID: q.Get("add"), Name: q.Get("name")})
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mutate(w, r, func(list *compare.List) {
		list.Remove(q.Get("remove"))
	})
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, change func(*compare.List)) {
	var synced string
	list := compare.NewList(s.palette, compare.SyncFunc(func(query string) {
		synced = query
	}))
	list.Seed(r.URL.RawQuery, s.defaultPlayer)
	change(list)

	// an empty list must not fall back to the default player on reload
	if synced == "" {
		synced = compare.EmptyListQuery
	}
	target := "/" + synced
	if t := r.URL.Query().Get("type"); t != "" {
		target += "&type=" + url.QueryEscape(t)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) shareBaseFor(r *http.Request) string {
	if s.shareBase != "" {
		return s.shareBase
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	players, err := s.provider.Search(r.Context(), keyword)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	if players == nil {
		players = []fide.SearchPlayer{}
	}
	respondJSON(w, players)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := s.provider.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	if hist == nil {
		hist = []ratings.RatingPoint{}
	}
	respondJSON(w, hist)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	rt, err := ratings.ParseRatingType(r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	a := compare.Player{ID: chi.URLParam(r, "id1")}
	b := compare.Player{ID: chi.URLParam(r, "id2")}

	stats, err := s.provider.Compare(r.Context(), a.ID, b.ID)
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}
	if stats == nil {
		respondJSON(w, nil)
		return
	}

	d := compare.BuildDashboard(nil, nil, []compare.PairStats{{A: a, B: b, Stats: stats}}, rt)
	respondJSON(w, d.Pairs[0])
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, err error) {
	log.Printf("web: %v", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
