package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/pkg/response"
)

// @Summary      Initiate Checkout
// @Description  Opens a hosted payment session for a plan and returns the gateway redirect URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body checkout.InitiateRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckout
// @Router       /api/v1/payment/checkout [post]
func ApiInitiateCheckout(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkout.InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := svc.Initiate(c.Request.Context(), &req)
		if err != nil {
			if errors.Is(err, checkout.ErrUnknownPlan) || errors.Is(err, checkout.ErrMissingUserID) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}
