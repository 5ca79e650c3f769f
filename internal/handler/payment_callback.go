package handler

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"transfers24/internal/metrics"
	"transfers24/internal/middleware"
	"transfers24/internal/models"
	"transfers24/internal/notify"
	"transfers24/internal/payment"
	"transfers24/internal/pkg/utils"
)

// CallbackStore is the part of the transaction repository callbacks need.
type CallbackStore interface {
	Create(tx *models.Transaction) error
	IsVerified(sessionID string) (bool, error)
}

// PaymentCallbackHandler handles the gateway status callback and the
// customer return page.
type PaymentCallbackHandler struct {
	payments *payment.Handler
	store    CallbackStore
	deduper  middleware.CallbackDeduper
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewPaymentCallbackHandler creates a new payment callback handler. In per-call
// credential mode callbacks are verified with defaults, since the gateway
// cannot send credential headers.
func NewPaymentCallbackHandler(
	payments *payment.Handler,
	defaults payment.Credentials,
	store CallbackStore,
	deduper middleware.CallbackDeduper,
	notifier notify.Notifier,
	logger *zap.Logger,
) *PaymentCallbackHandler {
	if payments.Mode() == payment.CredentialsPerCall {
		payments = payments.ViaCredentials(defaults)
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &PaymentCallbackHandler{
		payments: payments,
		store:    store,
		deduper:  deduper,
		notifier: notifier,
		logger:   logger,
	}
}

// Status verifies a transaction reported by the gateway.
// POST /payments/status
func (h *PaymentCallbackHandler) Status(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return c.String(http.StatusBadRequest, "ERROR")
	}
	callback := make(payment.Fields, len(form))
	for k := range form {
		callback[k] = form.Get(k)
	}

	ctx := c.Request().Context()
	start := time.Now()
	resp := h.payments.VerifyPayment(ctx, callback, true)
	metrics.Observe("verify", resp, start)

	if h.store != nil {
		if err := h.store.Create(models.NewTransaction(resp)); err != nil {
			h.logger.Warn("Failed to save verification", zap.Error(err))
		}
	}

	switch {
	case resp.Kind() == payment.KindInvalid:
		invalid, _ := resp.(payment.Invalid)
		h.logger.Error("Verification failed",
			zap.String("session_id", callback[payment.FieldSessionID]),
			zap.String("stage", invalid.Stage().String()),
			zap.String("reason", invalid.Reason()),
		)
		// Non-2xx makes the gateway retry later.
		return c.String(http.StatusBadGateway, "ERROR")
	case !resp.IsSuccess():
		fields := []zap.Field{
			zap.String("session_id", callback[payment.FieldSessionID]),
			zap.String("status", resp.ErrorCode().String()),
		}
		if v, ok := resp.(payment.Verify); ok && !v.ChecksumValid() {
			fields = append(fields, zap.Bool("checksum_valid", false))
		}
		h.logger.Warn("Verification rejected", fields...)
		return c.String(http.StatusBadRequest, "ERROR")
	}

	h.markProcessed(ctx, resp)
	h.notifier.PaymentVerified(ctx, resp)
	h.logger.Info("Payment verified",
		zap.String("session_id", resp.SessionID()),
		zap.String("order_id", resp.OrderID()),
		zap.String("amount", utils.FormatGrosze(callback[payment.FieldAmount])),
	)
	return c.String(http.StatusOK, "OK")
}

func (h *PaymentCallbackHandler) markProcessed(ctx context.Context, resp payment.Response) {
	if h.deduper == nil {
		return
	}
	if err := h.deduper.MarkProcessed(ctx, resp.SessionID(), resp.OrderID()); err != nil {
		h.logger.Warn("Failed to mark callback processed", zap.Error(err))
	}
}

// Return renders the page the customer lands on after paying.
// GET /payments/return?session=...
func (h *PaymentCallbackHandler) Return(c echo.Context) error {
	sessionID := c.QueryParam("session")
	if sessionID == "" {
		return h.renderPaymentResult(c, "Payment", "Missing session.", "")
	}

	verified := false
	if h.store != nil {
		ok, err := h.store.IsVerified(sessionID)
		if err != nil {
			h.logger.Error("Failed to load session", zap.Error(err))
		}
		verified = ok
	}

	if verified {
		return h.renderPaymentResult(c, "Payment successful", "Thank you, your payment has been confirmed.", sessionID)
	}
	return h.renderPaymentResult(c, "Payment pending", "Your payment is being processed. This page will not update automatically.", sessionID)
}

var resultTemplate = template.Must(template.New("payment").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: sans-serif; background: #f2f2f2; margin: 0; padding: 20px; display: flex; justify-content: center; align-items: center; min-height: 100vh; }
        .box { background: #fff; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); padding: 40px; text-align: center; max-width: 400px; width: 100%; }
        h1 { color: #333; margin-bottom: 20px; }
        p { color: #666; margin-bottom: 10px; }
    </style>
</head>
<body>
    <div class="box">
        <h1>{{.Title}}</h1>
        {{if .SessionID}}<p>Session: <span>{{.SessionID}}</span></p>{{end}}
        <p>{{.Message}}</p>
    </div>
</body>
</html>`))

func (h *PaymentCallbackHandler) renderPaymentResult(c echo.Context, title, message, sessionID string) error {
	var buf bytes.Buffer
	err := resultTemplate.Execute(&buf, map[string]string{
		"Title":     title,
		"Message":   message,
		"SessionID": sessionID,
	})
	if err != nil {
		return c.String(http.StatusInternalServerError, "template error")
	}
	return c.HTML(http.StatusOK, buf.String())
}
