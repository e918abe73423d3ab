package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/billing-dashboard/internal/domain/billing"
	apperrors "github.com/yanqian/billing-dashboard/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	billingSvc billing.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(billingSvc billing.Service, logger *slog.Logger) *Handler {
	return &Handler{
		billingSvc: billingSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Dashboard renders the caller's billing series and, when a hike was found,
// the advisory. Unauthenticated callers get an empty dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.billingSvc.Dashboard(c.Request.Context())
	if err != nil {
		status := http.StatusInternalServerError
		code := "dashboard_failed"
		if apperrors.IsCode(err, apperrors.CodeStaleView) {
			status = http.StatusConflict
			code = apperrors.CodeStaleView
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, dash)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
