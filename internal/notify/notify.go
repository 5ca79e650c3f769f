package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"transfers24/internal/payment"
	"transfers24/internal/pkg/utils"
)

// Notifier tells the operator about payment events. Implementations must not
// block the request that triggered them for long.
type Notifier interface {
	PaymentVerified(ctx context.Context, resp payment.Response)
	CredentialsFailed(ctx context.Context, resp payment.Response)
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) PaymentVerified(context.Context, payment.Response) {}
func (NopNotifier) CredentialsFailed(context.Context, payment.Response) {}

type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram sends events to the admin chat.
type Telegram struct {
	bot     sender
	adminID tele.ChatID
	logger  *zap.Logger
}

// NewTelegram creates an offline bot that only sends messages. It returns a
// NopNotifier when token or adminID is empty.
func NewTelegram(token string, adminID int64, logger *zap.Logger) (Notifier, error) {
	if token == "" || adminID == 0 {
		return NopNotifier{}, nil
	}
	tb, err := tele.NewBot(tele.Settings{
		Token:   token,
		Offline: true,
		OnError: func(err error, _ tele.Context) {
			logger.Error("telebot error", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telebot: %w", err)
	}
	return &Telegram{bot: tb, adminID: tele.ChatID(adminID), logger: logger}, nil
}

func (t *Telegram) PaymentVerified(_ context.Context, resp payment.Response) {
	t.send(VerifiedText(resp))
}

func (t *Telegram) CredentialsFailed(_ context.Context, resp payment.Response) {
	t.send(CredentialsText(resp))
}

func (t *Telegram) send(text string) {
	if _, err := t.bot.Send(t.adminID, text, tele.ModeHTML); err != nil {
		t.logger.Warn("failed to notify admin", zap.Error(err))
	}
}

// VerifiedText is the admin message for a verified payment.
func VerifiedText(resp payment.Response) string {
	received := resp.ReceiveParameters()
	amount := utils.FormatGrosze(received[payment.FieldAmount])
	currency := received[payment.FieldCurrency]

	var b strings.Builder
	b.WriteString("✅ <b>Payment verified</b>\n")
	fmt.Fprintf(&b, "Session: <code>%s</code>\n", html.EscapeString(resp.SessionID()))
	fmt.Fprintf(&b, "Order: <code>%s</code>\n", html.EscapeString(resp.OrderID()))
	fmt.Fprintf(&b, "Amount: %s %s", html.EscapeString(amount), html.EscapeString(currency))
	return b.String()
}

// CredentialsText is the admin message for a failed credential check.
func CredentialsText(resp payment.Response) string {
	var b strings.Builder
	b.WriteString("⚠️ <b>Przelewy24 credential check failed</b>\n")
	if invalid, ok := resp.(payment.Invalid); ok {
		fmt.Fprintf(&b, "Reason: %s", html.EscapeString(invalid.Reason()))
		return b.String()
	}
	fmt.Fprintf(&b, "Status: <code>%s</code>", html.EscapeString(resp.ErrorCode().String()))
	for _, msg := range resp.ErrorDescriptions() {
		if msg.Raw {
			fmt.Fprintf(&b, "\n%s", html.EscapeString(msg.Description))
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", html.EscapeString(msg.Code), html.EscapeString(msg.Description))
	}
	return b.String()
}
