package http

import (
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/presence-backend-go/internal/service/reconciler"
)

type OpsHandler interface {
	ReconcileNow(w http.ResponseWriter, r *http.Request)
}

type opsHandlerImpl struct {
	reconciler *reconciler.Service
}

func NewOpsHandler(rec *reconciler.Service) OpsHandler {
	return &opsHandlerImpl{reconciler: rec}
}

// ReconcileNow triggers an immediate sweep of stale open day records. The
// periodic job runs the same sweep; this endpoint exists for operators who
// do not want to wait for the next tick.
func (h *opsHandlerImpl) ReconcileNow(w http.ResponseWriter, r *http.Request) {
	closed, err := h.reconciler.ReconcileNow(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconcile sweep completed", map[string]interface{}{
		"closed_day_records": closed,
	})
}
