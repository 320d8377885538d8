package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type RouterOptions struct {
	Logger zerolog.Logger
}

// NewRouter constructs the API HTTP router.
//
// This is a thin adapter: handlers decode requests, call the roster store
// and encode its results. The stream endpoint sits outside the access log
// group because its connection is hijacked.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/members/stream", s.StreamMembers)

	r.Group(func(r chi.Router) {
		r.Use(hlog.AccessHandler(accessLog))

		r.Get("/members", s.ListMembers)
		r.Post("/members", s.AddMember)
		r.Post("/members/sort", s.SortMembers)
		r.Post("/members/search", s.SearchMembers)
		r.Post("/members/delete", s.DeleteMatchingMember)

		r.Get("/members/{memberId}", s.GetMember)
		r.Put("/members/{memberId}", s.UpdateMember)
		r.Delete("/members/{memberId}", s.DeleteMember)
	})
	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("requestId", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
