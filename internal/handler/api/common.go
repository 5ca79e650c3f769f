package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"transfers24/internal/models"
	"transfers24/internal/payment"
	"transfers24/internal/repository"
)

// Per-call credential headers.
const (
	HeaderPosID       = "X-P24-Pos-Id"
	HeaderMerchantID  = "X-P24-Merchant-Id"
	HeaderCRC         = "X-P24-Crc"
	HeaderEnvironment = "X-P24-Environment"
)

func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, status int, msg string, obj interface{}) error {
	return c.JSON(status, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    obj,
	})
}

func paginatedResponse(data interface{}, total int64, page, limit int) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// queryInt reads an integer query parameter.
func queryInt(c echo.Context, key string, defaultVal int) int {
	if i, err := strconv.Atoi(c.QueryParam(key)); err == nil {
		return i
	}
	return defaultVal
}

// credentialsFromHeaders reads per-call credentials. ok is false when the
// request carries none of the credential headers.
func credentialsFromHeaders(c echo.Context) (payment.Credentials, bool) {
	h := c.Request().Header
	creds := payment.Credentials{
		PosID:       strings.TrimSpace(h.Get(HeaderPosID)),
		MerchantID:  strings.TrimSpace(h.Get(HeaderMerchantID)),
		CRC:         strings.TrimSpace(h.Get(HeaderCRC)),
		Environment: payment.ParseEnvironment(strings.ToLower(strings.TrimSpace(h.Get(HeaderEnvironment)))),
	}
	if creds.PosID == "" && creds.MerchantID == "" && creds.CRC == "" {
		return creds, false
	}
	if creds.PosID == "" {
		creds.PosID = creds.MerchantID
	}
	return creds, true
}

// Repos bundles the repositories needed by API handlers.
type Repos struct {
	Transaction *repository.TransactionRepository
}
