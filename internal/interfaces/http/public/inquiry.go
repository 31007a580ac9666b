package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
	"github.com/sngm3741/inquiry-api/internal/interfaces/http/common"
)

const msgBodyTooLarge = "Request body is too large."

func (h *Handler) inquiryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodOptions:
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
		case http.MethodPost:
			h.createInquiry(w, r)
		default:
			w.Header().Set("Allow", "POST, OPTIONS")
			common.WriteFailure(h.logger, w, http.StatusMethodNotAllowed, domain.MsgMethodNotAllowed)
		}
	}
}

func (h *Handler) createInquiry(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, common.MaxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteFailure(h.logger, w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return
		}
		common.WriteFailure(h.logger, w, http.StatusBadRequest, domain.MsgInvalidJSON)
		return
	}

	raw, err := domain.DecodeSubmission(body)
	if err != nil {
		common.WriteFailure(h.logger, w, http.StatusBadRequest, domain.MsgInvalidJSON)
		return
	}

	result, err := h.commands.Submit(r.Context(), raw)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	if result.Discarded && h.logger != nil {
		h.logger.Printf("honeypot submission discarded from %s", r.RemoteAddr)
	}

	common.WriteSuccess(h.logger, w)
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		common.WriteFailure(h.logger, w, http.StatusBadRequest, validationErr.Message)
		return
	}

	var relayErr *domain.RelayError
	if errors.As(err, &relayErr) {
		common.WriteFailure(h.logger, w, http.StatusInternalServerError, relayErr.Error())
		return
	}

	if h.logger != nil {
		h.logger.Printf("inquiry submission failed: %v", err)
	}
	common.WriteFailure(h.logger, w, http.StatusInternalServerError, domain.MsgUnavailable)
}
