package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/routina/payments/internal/app/service/notifier"
	"github.com/routina/payments/internal/platform/sslcommerz"
	"github.com/routina/payments/pkg/logctx"
)

// @Summary      Payment IPN
// @Description  Gateway server-to-server callback. Validates the transaction against the gateway and applies the entitlement. Not for first-party clients.
// @Tags         Webhook
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Success      200  {object}  handlers.RespIPNAck
// @Failure      400  {object}  handlers.RespIPNError
// @Router       /api/v1/payment/ipn [post]
// ApiPaymentIPN terminates the gateway callback. Unlike the first-party APIs
// this endpoint speaks plain HTTP statuses: the gateway redelivers on non-2xx.
func ApiPaymentIPN(n *notifier.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logctx.FromGin(c, n.Logger).Infow("ipn_received")

		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "reason": "unreadable form body"})
			return
		}

		res, err := n.HandleCallback(c.Request.Context(), c.Request.PostForm)
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, notifier.ErrStoreWriteFailed):
				status = http.StatusInternalServerError
			case errors.Is(err, sslcommerz.ErrGatewayUnreachable):
				status = http.StatusBadGateway
			}
			c.JSON(status, gin.H{"status": "error", "reason": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"tran_id":      res.TranID,
			"deduplicated": res.Deduplicated,
		})
	}
}
