package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/sngm3741/inquiry-api/internal/inquiry/application"
	"github.com/sngm3741/inquiry-api/internal/inquiry/domain"
	"github.com/sngm3741/inquiry-api/internal/interfaces/http/common"
)

type inquiryListResponse struct {
	Items []domain.Record `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (h *Handler) inquiryListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		page, limit := common.ParsePaging(r.URL.Query())
		records, err := h.queries.List(ctx, application.Paging{Page: page, Limit: limit})
		if err != nil {
			h.logger.Printf("admin inquiry list failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "問い合わせ一覧の取得に失敗しました"})
			return
		}
		if records == nil {
			records = []domain.Record{}
		}

		common.WriteJSON(h.logger, w, http.StatusOK, inquiryListResponse{
			Items: records,
			Page:  page,
			Limit: limit,
		})
	}
}

func (h *Handler) operatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		operator, ok := common.OperatorFromContext(r.Context())
		if !ok {
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "認証情報の取得に失敗しました"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status":   "ok",
			"operator": operator,
		})
	}
}
