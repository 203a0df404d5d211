package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/app/service"
	"github.com/skrylnikov/cutly/internal/middleware"
	"github.com/skrylnikov/cutly/internal/storage"
)

// GetHandler serves redirect resolution and the health endpoint.
type GetHandler struct {
	service *service.LinkService
	logger  *zap.Logger
}

func NewGet(s *service.LinkService, l *zap.Logger) *GetHandler {
	return &GetHandler{
		service: s,
		logger:  l,
	}
}

// ByShort resolves a short id and redirects. The click is handed off to the
// background recorder; the redirect never waits for it.
func (h *GetHandler) ByShort(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	shortID := chi.URLParam(req, "shortID")

	record, err := h.service.Resolve(ctx, shortID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.Error(res, "Short link not found", http.StatusNotFound)
			return
		}
		h.logger.Error("cannot resolve short link", zap.String("shortID", shortID), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.service.RecordClick(storage.Click{
		ShortLinkID: record.ID,
		IP:          clientIP(req),
		UserAgent:   userAgent(req),
		UserID:      clickUserID(req),
	})

	http.Redirect(res, req, record.Original, http.StatusFound)
}

// PingDB reports store connectivity.
func (h *GetHandler) PingDB(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
		return
	}

	res.WriteHeader(http.StatusOK)
}

func clientIP(req *http.Request) string {
	if ip := req.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := req.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

func userAgent(req *http.Request) string {
	if ua := req.UserAgent(); ua != "" {
		return ua
	}
	return "unknown"
}

func clickUserID(req *http.Request) string {
	if identity, ok := middleware.IdentityFrom(req.Context()); ok {
		return identity.UserID
	}
	return ""
}
