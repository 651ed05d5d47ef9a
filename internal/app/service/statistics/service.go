package statistics

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/pkg/types"
)

type StatisticType string

const (
	// Grants applied per day (payments plus manual grants; redeliveries excluded).
	StatisticTypeDailyGrantCount StatisticType = "daily_grant_count"
	// Validated payment revenue per day, in minor currency units.
	StatisticTypeDailyRevenue StatisticType = "daily_revenue_cents"
	// Currently active entitlement rows; totals only, no daily series.
	StatisticTypeActiveEntitlements StatisticType = "active_entitlements"
)

var allStatisticTypes = []StatisticType{
	StatisticTypeDailyGrantCount,
	StatisticTypeDailyRevenue,
	StatisticTypeActiveEntitlements,
}

type PaymentStatisticDataItem struct {
	ID StatisticType `json:"id"`
}

type PaymentStatisticRequest struct {
	// StartDate/EndDate are inclusive YYYY-MM-DD; defaults to the last 30 days.
	StartDate string                      `json:"start_date"`
	EndDate   string                      `json:"end_date"`
	DataItems []*PaymentStatisticDataItem `json:"data_items"`
}

type DailyPoint struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
}

type PaymentStatisticResponse struct {
	Series map[StatisticType][]*DailyPoint `json:"series"`
	Totals map[StatisticType]int64         `json:"totals"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

const dateLayout = "2006-01-02"

// parseDateRange resolves the requested window. End is exclusive in SQL terms
// (start of the day after EndDate). Day boundaries are UTC, matching the
// AT TIME ZONE 'UTC' grouping in dailySeries; the session timezone must not
// decide which bucket a row lands in.
func parseDateRange(req *PaymentStatisticRequest, now time.Time) (start, end time.Time, err error) {
	y, m, d := now.UTC().Date()
	end = time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	start = end.AddDate(0, 0, -30)

	if req.StartDate != "" {
		start, err = time.Parse(dateLayout, req.StartDate)
		if err != nil {
			return start, end, fmt.Errorf("invalid start_date: %w", err)
		}
	}
	if req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, req.EndDate)
		if err != nil {
			return start, end, fmt.Errorf("invalid end_date: %w", err)
		}
		end = parsed.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return start, end, fmt.Errorf("start_date must be before end_date")
	}
	return start, end, nil
}

func (s *Service) GetPaymentStatistic(ctx context.Context, req *PaymentStatisticRequest) (*PaymentStatisticResponse, error) {
	if req == nil {
		req = &PaymentStatisticRequest{}
	}
	start, end, err := parseDateRange(req, time.Now())
	if err != nil {
		return nil, err
	}

	wanted := lo.Map(req.DataItems, func(it *PaymentStatisticDataItem, _ int) StatisticType { return it.ID })
	if len(wanted) == 0 {
		wanted = allStatisticTypes
	}

	res := &PaymentStatisticResponse{
		Series: map[StatisticType][]*DailyPoint{},
		Totals: map[StatisticType]int64{},
	}

	grantReasons := []types.EntitlementChangeReason{
		types.EntitlementChangeReasonPayment,
		types.EntitlementChangeReasonManualGrant,
	}

	for _, st := range lo.Uniq(wanted) {
		switch st {
		case StatisticTypeDailyGrantCount:
			points, err := s.dailySeries(ctx,
				"count(*)",
				grantReasons, start, end)
			if err != nil {
				return nil, fmt.Errorf("failed to compute %s: %w", st, err)
			}
			res.Series[st] = points
			res.Totals[st] = sumPoints(points)
		case StatisticTypeDailyRevenue:
			points, err := s.dailySeries(ctx,
				"coalesce(sum((extra->>'amount_cents')::bigint), 0)",
				grantReasons, start, end)
			if err != nil {
				return nil, fmt.Errorf("failed to compute %s: %w", st, err)
			}
			res.Series[st] = points
			res.Totals[st] = sumPoints(points)
		case StatisticTypeActiveEntitlements:
			var total int64
			err := s.db.WithContext(ctx).Model(&models.Entitlement{}).
				Where("is_premium_active = ? AND valid_until > ?", true, time.Now()).
				Count(&total).Error
			if err != nil {
				return nil, fmt.Errorf("failed to compute %s: %w", st, err)
			}
			res.Totals[st] = total
		default:
			return nil, fmt.Errorf("unsupported statistic type: %s", st)
		}
	}

	return res, nil
}

func (s *Service) dailySeries(ctx context.Context, aggExpr string, reasons []types.EntitlementChangeReason, start, end time.Time) ([]*DailyPoint, error) {
	var rows []*DailyPoint
	err := s.db.WithContext(ctx).
		Raw(fmt.Sprintf(`SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS date, %s AS value
			FROM entitlement_log
			WHERE reason IN ? AND created_at >= ? AND created_at < ?
			GROUP BY 1 ORDER BY 1`, aggExpr),
			reasons, start, end).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func sumPoints(points []*DailyPoint) int64 {
	var total int64
	for _, p := range points {
		total += p.Value
	}
	return total
}
