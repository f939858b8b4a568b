package axlive

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hazyhaar/axlive/kit"
)

// Handler serves the HTTP control surface:
//
//	GET  /health
//	GET  /cursor
//	GET  /pages
//	POST /navigate/{dir}       dir: next | previous
//	POST /focus/{pageID}
//	GET  /announcements?limit=
func (e *Engine) Handler() http.Handler {
	ep := e.endpoints()
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(apiHeaders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/cursor", func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, ep.cursor, nil)
	})

	r.Get("/pages", func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, ep.pages, nil)
	})

	r.Post("/navigate/{dir}", func(w http.ResponseWriter, r *http.Request) {
		dir := chi.URLParam(r, "dir")
		if dir != "next" && dir != "previous" {
			writeError(w, http.StatusBadRequest, errors.New("direction must be next or previous"))
			return
		}
		serve(w, r, ep.navigate, &navigateReq{Direction: dir})
	})

	r.Post("/focus/{pageID}", func(w http.ResponseWriter, r *http.Request) {
		serve(w, r, ep.focus, &focusReq{PageID: chi.URLParam(r, "pageID")})
	})

	r.Get("/announcements", func(w http.ResponseWriter, r *http.Request) {
		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		serve(w, r, ep.announcements, &announcementsReq{Limit: limit})
	})

	return r
}

func serve(w http.ResponseWriter, r *http.Request, ep kit.Endpoint, req any) {
	resp, err := ep(r.Context(), req)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownPage):
		return http.StatusNotFound
	case errors.Is(err, ErrNoHistory), errors.Is(err, ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// requestID stamps the transport and a request ID, honouring X-Request-ID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = "req_" + uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// apiHeaders marks every response as uncacheable JSON that must not be
// sniffed or framed.
func apiHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
