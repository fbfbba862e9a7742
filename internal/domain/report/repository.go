package report

import (
	"context"
	"time"
)

// RevenueSummary is the rollup over revenue-counted orders in a range
type RevenueSummary struct {
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TotalRevenue float64
	TotalOrders  int64
}

// DailyRevenue is one calendar-day bucket (UTC+7)
type DailyRevenue struct {
	Date       time.Time
	Revenue    float64
	OrderCount int64
}

// OrderStats classifies every order in range as success or failure
type OrderStats struct {
	TotalOrders    int64
	SuccessOrders  int64
	FailedOrders   int64
	SuccessRevenue float64
}

// DateRange is an inclusive range already resolved to absolute instants
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Repository answers read-only aggregation queries over orders
type Repository interface {
	// RevenueSummary sums totals of revenue-counted orders in range
	RevenueSummary(ctx context.Context, r DateRange) (*RevenueSummary, error)

	// DailyRevenue returns per-day buckets for days that have orders;
	// the service fills the gaps
	DailyRevenue(ctx context.Context, r DateRange) ([]DailyRevenue, error)

	// OrderStats counts successes and failures in range
	OrderStats(ctx context.Context, r DateRange) (*OrderStats, error)
}
