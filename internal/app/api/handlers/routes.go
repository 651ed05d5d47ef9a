package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/routina/payments/internal/app/service/checkout"
	"github.com/routina/payments/internal/app/service/notifier"
)

// RegisterPaymentV1Routes mounts the public payment surface: checkout session
// initiation and the gateway's IPN callback endpoint.
func RegisterPaymentV1Routes(r gin.IRouter, svc *checkout.Service, n *notifier.Service) {
	r.POST("/checkout", ApiInitiateCheckout(svc))
	r.POST("/ipn", ApiPaymentIPN(n))
}
