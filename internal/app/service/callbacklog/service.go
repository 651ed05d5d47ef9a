package callbacklog

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/pkg/logctx"
	"github.com/routina/payments/pkg/tool"
	"github.com/routina/payments/pkg/types"
)

// Service persists inbound IPN callbacks and serves the admin scan API.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a callback log row. Nil input is ignored.
// Log writes never block or fail the callback handling path.
func (s *Service) Save(ctx context.Context, row *models.CallbackLog) {
	go func() {
		if row == nil {
			return
		}
		if row.ID == "" {
			row.ID = tool.GenerateUUIDV7()
		}
		if err := s.db.Save(row).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save callback log: %v", err)
		}
	}()
}

type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.CallbackLog `json:"items"`
	Total int64                 `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// Scan implements paginated/filterable listing for admin pages.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.CallbackLog{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count callback logs: %w", err)
	}

	var rows []*models.CallbackLog

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy == "" {
		req.SortBy = "received_at"
	}
	q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})

	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list callback logs: %w", err)
	}

	return &ScanResponse{Items: rows, Total: total}, nil
}
