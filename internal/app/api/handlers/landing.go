package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Landing pages the gateway redirects the payer to. The redirect is not
// synchronized with IPN processing, so the success page makes no claim that
// the entitlement is already active; clients poll their entitlement instead.

// @Summary      Payment success landing
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /payment/success [get]
func PaymentSuccessLanding(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "received",
		"message": "Payment received. Your subscription will activate within a few moments.",
	})
}

// @Summary      Payment failure landing
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /payment/fail [get]
func PaymentFailLanding(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "failed",
		"message": "Payment was not completed. No charge was applied.",
	})
}

// @Summary      Payment cancel landing
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /payment/cancel [get]
func PaymentCancelLanding(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "cancelled",
		"message": "Payment was cancelled.",
	})
}

func RegisterLandingRoutes(r gin.IRouter) {
	r.GET("/payment/success", PaymentSuccessLanding)
	r.GET("/payment/fail", PaymentFailLanding)
	r.GET("/payment/cancel", PaymentCancelLanding)
}
