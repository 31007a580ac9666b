package admin

import (
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
)

// Handler wires admin HTTP endpoints to application services.
type Handler struct {
	logger  *log.Logger
	queries application.InquiryQueryService
}

// Config provides dependencies for Handler.
type Config struct {
	Logger  *log.Logger
	Queries application.InquiryQueryService
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:  cfg.Logger,
		queries: cfg.Queries,
	}
}

// Register mounts admin routes onto router. Callers are expected to wrap the
// router with authentication first.
func (h *Handler) Register(r chi.Router) {
	r.Get("/inquiries", h.inquiryListHandler())
	r.Get("/me", h.operatorHandler())
}
