package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger   *log.Logger
	commands application.InquiryCommandService
	site     http.Handler
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger   *log.Logger
	Commands application.InquiryCommandService
	// Site serves the static marketing pages. Nil leaves unmatched paths to the router.
	Site http.Handler
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:   cfg.Logger,
		commands: cfg.Commands,
		site:     cfg.Site,
	}
}

// Register mounts all public routes onto the router. apiMiddleware wraps the
// inquiry endpoint only.
func (h *Handler) Register(r chi.Router, apiMiddleware ...func(http.Handler) http.Handler) {
	r.With(apiMiddleware...).HandleFunc("/api/inquiry", h.inquiryHandler())
	if h.site != nil {
		r.Handle("/*", h.site)
	}
}
