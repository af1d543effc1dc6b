// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/client/internal/application/store"
	domainerror "github.com/finance-tracker/client/internal/domain/error"
	"github.com/finance-tracker/client/internal/integration/entrypoint/dto"
	"github.com/finance-tracker/client/internal/integration/entrypoint/middleware"
)

// DashboardController handles the dashboard endpoint.
type DashboardController struct {
	txStore *store.TransactionStore
}

// NewDashboardController creates a new dashboard controller instance.
func NewDashboardController(txStore *store.TransactionStore) *DashboardController {
	return &DashboardController{
		txStore: txStore,
	}
}

// Summary handles GET /dashboard requests. Totals and chart data come from
// the aggregate the store maintains; nothing is computed against the
// persistence provider on this path.
func (c *DashboardController) Summary(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Authentication required",
			Code:  string(domainerror.ErrCodeUnauthenticated),
		})
		return
	}

	snapshot := c.txStore.Snapshot()
	if snapshot.UserID != userID {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "Session is no longer active",
			Code:  string(domainerror.ErrCodeUnauthenticated),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.DashboardResponse{
		TotalIncome:  snapshot.Aggregate.TotalIncome,
		TotalExpense: snapshot.Aggregate.TotalExpense,
		Balance:      snapshot.Aggregate.Balance,
		ChartData:    dto.ToChartData(snapshot.Aggregate),
		Loading:      snapshot.Loading,
	})
}
