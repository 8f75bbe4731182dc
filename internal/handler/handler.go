package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/vtarasov/blog-service/internal/apperr"
	"github.com/vtarasov/blog-service/internal/config"
	"github.com/vtarasov/blog-service/internal/feed"
	"github.com/vtarasov/blog-service/internal/service"
)

type Handler struct {
	svc  *service.Service
	log  *logrus.Logger
	cfg  *config.Config
	feed *feed.Builder
}

func NewHandler(svc *service.Service, log *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		svc:  svc,
		log:  log,
		cfg:  cfg,
		feed: feed.NewBuilder("Blog", cfg.ClientURL),
	}
}

// Health responds to the root route
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("API is running..."))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	}
	h.writeJSON(w, status, map[string]string{"message": apperr.ClientMessage(err)})
}

func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validationf("invalid request body")
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid %s", name)
	}
	return id, nil
}
