package report

import (
	"context"
	"time"

	"github.com/scentshop/backend/internal/domain/report"
	"github.com/scentshop/backend/internal/domain/shared"
)

// Storefront dates are interpreted in fixed UTC+7 (Asia/Ho_Chi_Minh without
// DST), regardless of the server timezone.
var storeZone = time.FixedZone("UTC+7", 7*60*60)

const dayLayout = "2006-01-02"

// Service answers read-only revenue and order statistics queries
type Service struct {
	repo report.Repository
}

// NewService creates a report service
func NewService(repo report.Repository) *Service {
	return &Service{repo: repo}
}

// RangeRequest is an inclusive date range in YYYY-MM-DD
type RangeRequest struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// SummaryResponse is the revenue rollup for a period
type SummaryResponse struct {
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
}

// ChartPoint is one calendar-day bucket. Days without orders appear with
// zero values so the series has no missing dates.
type ChartPoint struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int64   `json:"order_count"`
}

// StatsResponse classifies every order in range as success or failure
type StatsResponse struct {
	TotalOrders    int64   `json:"total_orders"`
	SuccessOrders  int64   `json:"success_orders"`
	FailedOrders   int64   `json:"failed_orders"`
	SuccessRevenue float64 `json:"success_revenue"`
}

// GetRevenueSummary sums revenue-counted orders over the range
func (s *Service) GetRevenueSummary(ctx context.Context, req RangeRequest) (*SummaryResponse, error) {
	r, err := parseRange(req)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.RevenueSummary(ctx, r)
	if err != nil {
		return nil, err
	}

	return &SummaryResponse{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		TotalRevenue: summary.TotalRevenue,
		TotalOrders:  summary.TotalOrders,
	}, nil
}

// GetRevenueChart returns one point per calendar day in range, gap-filled
// with zero-valued days
func (s *Service) GetRevenueChart(ctx context.Context, req RangeRequest) ([]ChartPoint, error) {
	r, err := parseRange(req)
	if err != nil {
		return nil, err
	}

	buckets, err := s.repo.DailyRevenue(ctx, r)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]report.DailyRevenue, len(buckets))
	for _, b := range buckets {
		byDay[b.Date.In(storeZone).Format(dayLayout)] = b
	}

	var points []ChartPoint
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		point := ChartPoint{Date: key}
		if b, ok := byDay[key]; ok {
			point.Revenue = b.Revenue
			point.OrderCount = b.OrderCount
		}
		points = append(points, point)
	}
	return points, nil
}

// GetOrderStats counts successful and failed orders in range
func (s *Service) GetOrderStats(ctx context.Context, req RangeRequest) (*StatsResponse, error) {
	r, err := parseRange(req)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.OrderStats(ctx, r)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		TotalOrders:    stats.TotalOrders,
		SuccessOrders:  stats.SuccessOrders,
		FailedOrders:   stats.FailedOrders,
		SuccessRevenue: stats.SuccessRevenue,
	}, nil
}

// parseRange resolves an inclusive YYYY-MM-DD range to absolute instants:
// start T00:00:00+07:00 through end T23:59:59.999+07:00
func parseRange(req RangeRequest) (report.DateRange, error) {
	start, err := time.ParseInLocation(dayLayout, req.StartDate, storeZone)
	if err != nil {
		return report.DateRange{}, shared.NewDomainError("INVALID_INPUT", "start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dayLayout, req.EndDate, storeZone)
	if err != nil {
		return report.DateRange{}, shared.NewDomainError("INVALID_INPUT", "end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return report.DateRange{}, shared.NewDomainError("INVALID_INPUT", "end_date is before start_date")
	}

	return report.DateRange{
		Start: start,
		End:   end.Add(24*time.Hour - time.Millisecond),
	}, nil
}
