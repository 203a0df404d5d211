package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/app/service"
	"github.com/skrylnikov/cutly/internal/middleware"
	"github.com/skrylnikov/cutly/internal/models"
)

// PostHandler serves the two creation entry points. When the deployment has
// OIDC configured, anonymous creation is rejected here; the link service
// itself stays identity-agnostic.
type PostHandler struct {
	urlService    *service.LinkService
	oidc          *service.OIDC
	logger        *zap.Logger
	defaultLength int
}

func NewPost(s *service.LinkService, oidc *service.OIDC, l *zap.Logger, defaultLength int) *PostHandler {
	return &PostHandler{
		urlService:    s,
		oidc:          oidc,
		logger:        l,
		defaultLength: defaultLength,
	}
}

// ownerID resolves the caller identity and enforces the login policy.
func (h *PostHandler) ownerID(req *http.Request) (string, error) {
	identity, ok := middleware.IdentityFrom(req.Context())
	if ok {
		return identity.UserID, nil
	}
	if h.oidc.Configured() {
		return "", service.ErrUnauthorized
	}
	return "", nil
}

// JSON handles POST /api/shorten with a {originalUrl, length?} body.
func (h *PostHandler) JSON(res http.ResponseWriter, req *http.Request) {
	ownerID, err := h.ownerID(req)
	if err != nil {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request models.CreateRequest
	if err := decodeJSONBody(res, req, &request); err != nil {
		var mr *malformedRequest
		if errors.As(err, &mr) {
			http.Error(res, mr.msg, mr.status)
		} else {
			h.logger.Error("cannot decode request", zap.Error(err))
			http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
		return
	}

	length := request.Length
	if length == 0 {
		length = h.defaultLength
	}

	record, err := h.urlService.CreateOrReuse(req.Context(), request.OriginalURL, length, ownerID)
	if err != nil {
		h.writeError(res, request.OriginalURL, err)
		return
	}

	response, _ := json.Marshal(models.CreateResponse{
		Result:      h.urlService.BaseURL() + "/" + record.ShortID,
		ShortID:     record.ShortID,
		OriginalURL: record.Original,
		Length:      record.Length,
		CreatedAt:   record.CreatedAt,
	})

	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(http.StatusCreated)
	if _, err := res.Write(response); err != nil {
		h.logger.Error("cannot write response", zap.Error(err))
	}
}

// PlainBody handles POST / with the destination URL as the raw body and
// answers with the absolute short URL as text.
func (h *PostHandler) PlainBody(res http.ResponseWriter, req *http.Request) {
	ownerID, err := h.ownerID(req)
	if err != nil {
		http.Error(res, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	body, err := readBody(req)
	if err != nil || len(body) == 0 {
		res.WriteHeader(http.StatusBadRequest)
		return
	}

	record, err := h.urlService.CreateOrReuse(req.Context(), string(body), h.defaultLength, ownerID)
	if err != nil {
		h.writeError(res, string(body), err)
		return
	}

	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.WriteHeader(http.StatusCreated)
	if _, err := res.Write([]byte(h.urlService.BaseURL() + "/" + record.ShortID)); err != nil {
		h.logger.Error("cannot write response", zap.Error(err))
	}
}

func (h *PostHandler) writeError(res http.ResponseWriter, original string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL), errors.Is(err, service.ErrInvalidLength):
		http.Error(res, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrAllocationExhausted):
		h.logger.Error("allocation exhausted", zap.String("original", original))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	default:
		h.logger.Error("cannot create short link", zap.String("original", original), zap.Error(err))
		http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
