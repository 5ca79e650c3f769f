package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transfers24/internal/payment"
)

func TestRedisCallbackDeduper(t *testing.T) {
	mr := miniredis.RunT(t)

	d, err := NewCallbackDeduper(mr.Addr(), "", 0, time.Minute)
	require.NoError(t, err)
	require.IsType(t, &redisCallbackDeduper{}, d)

	ctx := context.Background()
	done, err := d.Processed(ctx, "s-1", "7")
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, d.MarkProcessed(ctx, "s-1", "7"))
	done, err = d.Processed(ctx, "s-1", "7")
	require.NoError(t, err)
	assert.True(t, done)
	assert.True(t, mr.Exists("p24:callback:s-1:7"))

	mr.FastForward(2 * time.Minute)
	done, err = d.Processed(ctx, "s-1", "7")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestNewCallbackDeduper_FallsBackToMemory(t *testing.T) {
	d, err := NewCallbackDeduper("", "", 0, 0)
	require.NoError(t, err)
	assert.IsType(t, &memoryCallbackDeduper{}, d)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	d, err = NewCallbackDeduper(addr, "", 0, time.Minute)
	assert.Error(t, err)
	assert.IsType(t, &memoryCallbackDeduper{}, d)
}

func TestMemoryCallbackDeduper(t *testing.T) {
	d := newMemoryCallbackDeduper(time.Minute)
	ctx := context.Background()

	require.NoError(t, d.MarkProcessed(ctx, "s-1", "7"))

	done, _ := d.Processed(ctx, "s-1", "7")
	assert.True(t, done)
	done, _ = d.Processed(ctx, "s-1", "8")
	assert.False(t, done)
}

func TestCallbackDedup(t *testing.T) {
	d := newMemoryCallbackDeduper(time.Minute)
	require.NoError(t, d.MarkProcessed(context.Background(), "s-1", "7"))

	calls := 0
	h := CallbackDedup(d)(func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "handled")
	})

	tests := []struct {
		name     string
		form     url.Values
		wantBody string
	}{
		{"processed", url.Values{payment.FieldSessionID: {"s-1"}, payment.FieldOrderID: {"7"}}, "OK"},
		{"new order", url.Values{payment.FieldSessionID: {"s-1"}, payment.FieldOrderID: {"8"}}, "handled"},
		{"missing order", url.Values{payment.FieldSessionID: {"s-1"}}, "handled"},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/payments/status", strings.NewReader(tt.form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			rec := httptest.NewRecorder()

			require.NoError(t, h(e.NewContext(req, rec)))
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
	assert.Equal(t, 2, calls)
}
