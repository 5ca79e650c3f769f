package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"transfers24/internal/config"
	"transfers24/internal/metrics"
	"transfers24/internal/models"
	"transfers24/internal/payment"
	"transfers24/internal/pkg/utils"
)

// PaymentHandler exposes payment registration, redirect and credential checks.
type PaymentHandler struct {
	payments *payment.Handler
	repos    *Repos
	cfg      config.Transfers24Config
	logger   *zap.Logger
}

func NewPaymentHandler(payments *payment.Handler, repos *Repos, cfg config.Transfers24Config, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, repos: repos, cfg: cfg, logger: logger}
}

// handlerFor binds the request's credentials in per-call mode.
func (h *PaymentHandler) handlerFor(c echo.Context) *payment.Handler {
	if h.payments.Mode() != payment.CredentialsPerCall {
		return h.payments
	}
	if creds, ok := credentialsFromHeaders(c); ok {
		return h.payments.ViaCredentials(creds)
	}
	return h.payments
}

// Register registers a new transaction.
// POST /api/payments
func (h *PaymentHandler) Register(c echo.Context) error {
	var req models.RegisterPaymentRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	amount, err := utils.ToGrosze(req.Amount)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err.Error(), nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return errorResponse(c, http.StatusBadRequest, "email is required", nil)
	}

	fields := h.registerFields(req, amount)

	handler := h.handlerFor(c)
	start := time.Now()
	resp := handler.RegisterPayment(c.Request().Context(), fields)
	metrics.Observe("register", resp, start)
	h.audit(resp)

	view := models.NewOutcomeView(resp)
	if resp.Kind() == payment.KindInvalid {
		return errorResponse(c, http.StatusBadGateway, view.Failure, view)
	}
	if !resp.IsSuccess() {
		return errorResponse(c, http.StatusUnprocessableEntity, "Registration rejected", view)
	}
	if resp.Token() != "" {
		view.RedirectURL = handler.BuildRedirectURL(resp.Token(), false).String()
	}
	return successResponse(c, "Payment registered", view)
}

func (h *PaymentHandler) registerFields(req models.RegisterPaymentRequest, amount string) payment.Fields {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = utils.GenerateSessionID()
	}
	fields := payment.Fields{
		payment.FieldSessionID: sessionID,
		payment.FieldAmount:    amount,
		payment.FieldCurrency:  orDefault(req.Currency, "PLN"),
		"p24_description":      req.Description,
		"p24_email":            req.Email,
		"p24_country":          orDefault(req.Country, "PL"),
		"p24_language":         orDefault(req.Language, "pl"),
	}
	if h.cfg.ReturnURL != "" {
		fields["p24_url_return"] = h.cfg.ReturnURL
	}
	if h.cfg.StatusURL != "" {
		fields["p24_url_status"] = h.cfg.StatusURL
	}
	return fields
}

// Redirect returns the payment page URL for a token, or redirects to it
// when redirect=1.
// GET /api/payments/redirect/:token
func (h *PaymentHandler) Redirect(c echo.Context) error {
	token := c.Param("token")
	redirect := c.QueryParam("redirect") == "1"

	target := h.handlerFor(c).BuildRedirectURL(token, redirect).String()
	if !isAbsoluteURL(target) {
		return errorResponse(c, http.StatusBadRequest, target, nil)
	}
	if redirect {
		return c.Redirect(http.StatusFound, target)
	}
	return successResponse(c, "", map[string]string{"redirect_url": target})
}

// Credentials tests the credentials against the gateway.
// GET /api/payments/credentials
func (h *PaymentHandler) Credentials(c echo.Context) error {
	start := time.Now()
	resp := h.handlerFor(c).CheckCredentials(c.Request().Context())
	metrics.Observe("test_connection", resp, start)

	view := models.NewOutcomeView(resp)
	if resp.Kind() == payment.KindInvalid {
		return errorResponse(c, http.StatusBadGateway, view.Failure, view)
	}
	if !resp.IsSuccess() {
		return errorResponse(c, http.StatusOK, "Credentials rejected", view)
	}
	return successResponse(c, "Credentials valid", view)
}

// List returns the audit trail, newest first.
// GET /api/payments
func (h *PaymentHandler) List(c echo.Context) error {
	limit := queryInt(c, "limit", 50)
	page := queryInt(c, "page", 1)
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if page <= 0 {
		page = 1
	}

	txs, total, err := h.repos.Transaction.FindAll(limit, page)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Failed to retrieve transactions", nil)
	}
	return successResponse(c, "", paginatedResponse(txs, total, page, limit))
}

// Session returns every audit row of one session.
// GET /api/payments/:session
func (h *PaymentHandler) Session(c echo.Context) error {
	txs, err := h.repos.Transaction.FindBySessionID(c.Param("session"))
	if err != nil {
		h.logger.Error("Failed to load session", zap.Error(err))
		return errorResponse(c, http.StatusInternalServerError, "Failed to retrieve transactions", nil)
	}
	if len(txs) == 0 {
		return errorResponse(c, http.StatusNotFound, "Session not found", nil)
	}
	return successResponse(c, "", txs)
}

func (h *PaymentHandler) audit(resp payment.Response) {
	if h.repos == nil || h.repos.Transaction == nil {
		return
	}
	if err := h.repos.Transaction.Create(models.NewTransaction(resp)); err != nil {
		h.logger.Warn("Failed to save transaction", zap.Error(err), zap.String("kind", string(resp.Kind())))
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// isAbsoluteURL tells a payment page URL apart from the failure message
// BuildRedirectURL returns in its place.
func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && u.Host != ""
}
