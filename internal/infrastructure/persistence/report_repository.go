package persistence

import (
	"context"
	"time"

	"github.com/scentshop/backend/internal/domain/order"
	"github.com/scentshop/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository with SQL aggregations
// over the orders table.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// revenueStatuses returns the statuses counted as revenue, as strings for SQL
func revenueStatuses() []string {
	statuses := make([]string, len(order.RevenueStatuses))
	for i, s := range order.RevenueStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// RevenueSummary sums totals of revenue-counted orders in range
func (r *GormReportRepository) RevenueSummary(ctx context.Context, dr report.DateRange) (*report.RevenueSummary, error) {
	type summaryResult struct {
		TotalRevenue float64
		TotalOrders  int64
	}

	var result summaryResult
	err := r.db.WithContext(ctx).Table("orders").
		Select(`
			COALESCE(SUM(total_amount), 0) as total_revenue,
			COUNT(*) as total_orders
		`).
		Where("created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status IN ?", revenueStatuses()).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &report.RevenueSummary{
		PeriodStart:  dr.Start,
		PeriodEnd:    dr.End,
		TotalRevenue: result.TotalRevenue,
		TotalOrders:  result.TotalOrders,
	}, nil
}

// DailyRevenue buckets revenue-counted orders by store-local calendar day.
// Orders are stored in UTC; the seven hour shift puts each one in its
// UTC+7 day before truncation.
func (r *GormReportRepository) DailyRevenue(ctx context.Context, dr report.DateRange) ([]report.DailyRevenue, error) {
	type dailyResult struct {
		Date       time.Time
		Revenue    float64
		OrderCount int64
	}

	var results []dailyResult
	err := r.db.WithContext(ctx).Table("orders").
		Select(`
			date_trunc('day', (created_at AT TIME ZONE 'UTC') + interval '7 hours') as date,
			COALESCE(SUM(total_amount), 0) as revenue,
			COUNT(*) as order_count
		`).
		Where("created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Where("status IN ?", revenueStatuses()).
		Group("date").
		Order("date ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	daily := make([]report.DailyRevenue, len(results))
	for i, res := range results {
		daily[i] = report.DailyRevenue{
			Date:       res.Date,
			Revenue:    res.Revenue,
			OrderCount: res.OrderCount,
		}
	}
	return daily, nil
}

// OrderStats classifies every order in range. Success means the order
// counts as revenue; failure means it was cancelled or its payment failed.
func (r *GormReportRepository) OrderStats(ctx context.Context, dr report.DateRange) (*report.OrderStats, error) {
	type statsResult struct {
		TotalOrders    int64
		SuccessOrders  int64
		FailedOrders   int64
		SuccessRevenue float64
	}

	var result statsResult
	err := r.db.WithContext(ctx).Table("orders").
		Select(`
			COUNT(*) as total_orders,
			COUNT(*) FILTER (WHERE status IN ?) as success_orders,
			COUNT(*) FILTER (WHERE status = ? OR payment_status = ?) as failed_orders,
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ?), 0) as success_revenue
		`,
			revenueStatuses(),
			string(order.StatusCancelled),
			string(order.PaymentFailed),
			revenueStatuses(),
		).
		Where("created_at BETWEEN ? AND ?", dr.Start, dr.End).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return &report.OrderStats{
		TotalOrders:    result.TotalOrders,
		SuccessOrders:  result.SuccessOrders,
		FailedOrders:   result.FailedOrders,
		SuccessRevenue: result.SuccessRevenue,
	}, nil
}

var _ report.Repository = (*GormReportRepository)(nil)
