package controller

import (
	"errors"
	"io"
	"net/http"

	"course_market_backend/internal/service"
	"course_market_backend/internal/util"
	"course_market_backend/pkg/logger"
	"course_market_backend/pkg/monitoring"
	"course_market_backend/pkg/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookController terminates payment provider deliveries. Responses are
// plain strings, not the JSON envelope: the provider only reads the status
// code. 400 stops redelivery of permanently broken events; 500 invites the
// provider to redeliver, which is safe because enrollment is idempotent.
type WebhookController struct {
	Verifier    *payment.Verifier
	Enrollments *service.EnrollmentService
}

func NewWebhookController(verifier *payment.Verifier, enrollments *service.EnrollmentService) *WebhookController {
	return &WebhookController{Verifier: verifier, Enrollments: enrollments}
}

// @Summary Payment provider webhook
// @Description Receives signed checkout events from the payment provider
// @Tags payments
// @Accept json
// @Produce plain
// @Success 200
// @Failure 400 {string} string
// @Failure 500 {string} string
// @Router /payments/webhook [post]
func (c *WebhookController) HandleEvent(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		monitoring.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		ctx.String(http.StatusBadRequest, "unreadable body")
		return
	}

	// The signature covers the raw body; nothing is parsed until it checks
	// out, and nothing below may have happened for an unverified delivery.
	event, err := c.Verifier.VerifyAndParse(body, ctx.GetHeader(payment.SignatureHeader))
	if err != nil {
		monitoring.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		logger.Log.Warn("webhook verification failed", zap.Error(err))
		switch {
		case errors.Is(err, payment.ErrMissingSignature):
			ctx.String(http.StatusBadRequest, "no signature found")
		case errors.Is(err, payment.ErrMalformedPayload):
			ctx.String(http.StatusBadRequest, "malformed event payload")
		default:
			ctx.String(http.StatusBadRequest, "signature verification failed")
		}
		return
	}

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		if _, err := c.Enrollments.Enroll(&event.Data.Object); err != nil {
			switch {
			case errors.Is(err, util.ErrMissingMetadata):
				monitoring.WebhookEvents.WithLabelValues(event.Type, "rejected").Inc()
				ctx.String(http.StatusBadRequest, "missing metadata")
			case errors.Is(err, util.ErrStudentNotFound):
				monitoring.WebhookEvents.WithLabelValues(event.Type, "rejected").Inc()
				ctx.String(http.StatusBadRequest, "student not found")
			default:
				// Transient store failure; the provider redelivers and the
				// unique index absorbs the replay.
				monitoring.WebhookEvents.WithLabelValues(event.Type, "failed").Inc()
				logger.Log.Error("webhook handler failed", zap.String("eventId", event.ID), zap.Error(err))
				ctx.String(http.StatusInternalServerError, "webhook handler failed")
			}
			return
		}
		monitoring.WebhookEvents.WithLabelValues(event.Type, "processed").Inc()
		ctx.Status(http.StatusOK)
	default:
		// Unhandled event variants are acknowledged so the provider stops
		// redelivering them; the metric keeps them visible.
		monitoring.WebhookEvents.WithLabelValues(event.Type, "ignored").Inc()
		ctx.Status(http.StatusOK)
	}
}
