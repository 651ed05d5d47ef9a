package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/routina/payments/internal/app/service/callbacklog"
	"github.com/routina/payments/internal/app/service/entitlement"
	"github.com/routina/payments/internal/app/service/statistics"
	"github.com/routina/payments/internal/models"
	"github.com/routina/payments/pkg/config"
	"github.com/routina/payments/pkg/response"
	"github.com/routina/payments/pkg/tool"
	"github.com/routina/payments/pkg/types"
)

type EntitlementView struct {
	UserID            string     `json:"user_id"`
	IsPremiumActive   bool       `json:"is_premium_active"`
	PlanID            string     `json:"plan_id"`
	ValidUntil        *time.Time `json:"valid_until"`
	LastTransactionID string     `json:"last_transaction_id"`
	LastTransactionAt *time.Time `json:"last_transaction_at"`
	PaymentProvider   string     `json:"payment_provider"`
	CurrentlyValid    bool       `json:"currently_valid"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toEntitlementView(m *models.Entitlement) *EntitlementView {
	return &EntitlementView{
		UserID:            m.UserID,
		IsPremiumActive:   m.IsPremiumActive,
		PlanID:            m.PlanID,
		ValidUntil:        m.ValidUntil,
		LastTransactionID: m.LastTransactionID,
		LastTransactionAt: m.LastTransactionAt,
		PaymentProvider:   string(m.PaymentProvider),
		CurrentlyValid:    m.Valid(),
		UpdatedAt:         m.UpdatedAt,
	}
}

// @Summary      Get Entitlement (Admin)
// @Description  Reads one user's entitlement record.
// @Tags         Admin
// @Produce      json
// @Param        user_id query string true "User ID"
// @Success      200  {object}  handlers.RespEntitlement
// @Router       /api/v1/admin/entitlement [get]
func ApiGetEntitlement(svc *entitlement.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		row, err := svc.Get(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		if row == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "no entitlement for user"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(toEntitlementView(row)))
	}
}

type CallbackLogItem struct {
	ID            string                   `json:"id"`
	UserID        *string                  `json:"user_id"`
	TraceID       string                   `json:"trace_id"`
	TransactionID string                   `json:"transaction_id"`
	ValID         string                   `json:"val_id"`
	ReceivedAt    time.Time                `json:"received_at"`
	Status        models.CallbackLogStatus `json:"status"`
	CreatedAt     time.Time                `json:"created_at"`
}

type ListCallbackLogsResponse struct {
	Items []*CallbackLogItem `json:"items"`
	Total int64              `json:"total"`
}

// @Summary      List Callback Logs (Admin)
// @Description  Retrieves a paginated and filterable list of IPN callback logs.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body callbacklog.ScanRequest true "Scan request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListCallbackLogs
// @Router       /api/v1/admin/list_callback_logs [post]
func ApiListCallbackLogs(svc *callbacklog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callbacklog.ScanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.Scan(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.CallbackLog, _ int) *CallbackLogItem {
			return &CallbackLogItem{
				ID:            it.ID,
				UserID:        it.UserID,
				TraceID:       it.TraceID,
				TransactionID: it.TransactionID,
				ValID:         it.ValID,
				ReceivedAt:    it.ReceivedAt,
				Status:        it.Status,
				CreatedAt:     it.CreatedAt,
			}
		})
		c.JSON(http.StatusOK, response.OKT(&ListCallbackLogsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      Get Payment Statistics (Admin)
// @Description  Retrieves daily grant counts, revenue, and active entitlement totals.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.PaymentStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  handlers.RespPaymentStatistic
// @Router       /api/v1/admin/get_payment_statistic [post]
func ApiGetPaymentStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.PaymentStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.GetPaymentStatistic(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type ManualGrantRequest struct {
	UserID string `json:"user_id"`
	PlanID string `json:"plan_id"`
}

// @Summary      Manual Grant (Admin)
// @Description  Grants an entitlement manually. Repair path for payments that validated but failed to persist.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body handlers.ManualGrantRequest true "Manual grant request"
// @Success      200  {object}  handlers.RespEntitlement
// @Router       /api/v1/admin/grant [post]
func ApiManualGrant(svc *entitlement.Service, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ManualGrantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.UserID == "" {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "missing user_id"))
			return
		}
		plan := cfg.GetPlanByID(req.PlanID)
		if plan == nil {
			// Unlike the IPN path, operators get no fallback; typos should fail loudly.
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown plan: "+req.PlanID))
			return
		}

		operatorID := c.GetString("operatorID")
		res, err := svc.Apply(c.Request.Context(), &entitlement.GrantRequest{
			UserID:         req.UserID,
			PlanID:         plan.ID,
			DurationMonths: plan.DurationMonths,
			TransactionID:  tool.GenerateUUIDV7(),
			Provider:       types.PaymentProviderInner,
			AmountCents:    0,
			Currency:       plan.Currency,
			OperatorID:     operatorID,
			Reason:         types.EntitlementChangeReasonManualGrant,
			ProcessedAt:    time.Now(),
		})
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(toEntitlementView(res.Entitlement)))
	}
}

func RegisterAdminRoutes(r gin.IRouter, ent *entitlement.Service, logs *callbacklog.Service, stats *statistics.Service, cfg *config.Config) {
	r.GET("/entitlement", ApiGetEntitlement(ent))
	r.POST("/list_callback_logs", ApiListCallbackLogs(logs))
	r.POST("/get_payment_statistic", ApiGetPaymentStatistic(stats))
	r.POST("/grant", ApiManualGrant(ent, cfg))
}
