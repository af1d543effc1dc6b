// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finance-tracker/client/internal/domain/entity"
)

// AggregateResponse represents the derived financial totals.
type AggregateResponse struct {
	TotalIncome  decimal.Decimal            `json:"total_income"`
	TotalExpense decimal.Decimal            `json:"total_expense"`
	Balance      decimal.Decimal            `json:"balance"`
	Breakdown    map[string]decimal.Decimal `json:"category_breakdown"`
}

// ChartPoint is one slice of the expense-by-category chart.
type ChartPoint struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// DashboardResponse represents the response for the dashboard endpoint.
type DashboardResponse struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Balance      decimal.Decimal `json:"balance"`
	ChartData    []ChartPoint    `json:"chart_data"`
	Loading      bool            `json:"loading"`
}

// ToAggregateResponse converts a domain Aggregate to its API representation.
func ToAggregateResponse(aggregate entity.Aggregate) AggregateResponse {
	return AggregateResponse{
		TotalIncome:  aggregate.TotalIncome,
		TotalExpense: aggregate.TotalExpense,
		Balance:      aggregate.Balance,
		Breakdown:    aggregate.CategoryBreakdown,
	}
}

// ToChartData flattens the category breakdown into chart points ordered by
// category name, so the chart is stable across refreshes.
func ToChartData(aggregate entity.Aggregate) []ChartPoint {
	points := make([]ChartPoint, 0, len(aggregate.CategoryBreakdown))
	for name, value := range aggregate.CategoryBreakdown {
		points = append(points, ChartPoint{Name: name, Value: value})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Name < points[j].Name
	})
	return points
}
