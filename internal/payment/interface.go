package payment

import "context"

// Field names of the Przelewy24 wire contract.
const (
	FieldSessionID  = "p24_session_id"
	FieldOrderID    = "p24_order_id"
	FieldAmount     = "p24_amount"
	FieldCurrency   = "p24_currency"
	FieldSign       = "p24_sign"
	FieldMerchantID = "p24_merchant_id"
	FieldPosID      = "p24_pos_id"
	FieldAPIVersion = "p24_api_version"
)

// Fields is a flat set of form fields sent to or received from the gateway.
type Fields map[string]string

// Clone returns an independent copy; nil stays nil.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Reply is the raw result of one gateway call.
type Reply struct {
	StatusCode int
	Body       string
	// FormParams holds the form as it was posted, signature included.
	FormParams Fields
}

// Gateway defines the transport-facing operations of the payment gateway.
type Gateway interface {
	// Configure returns a gateway bound to creds.
	Configure(creds Credentials) (Gateway, error)

	// Register registers a new transaction.
	Register(ctx context.Context, fields Fields) (*Reply, error)

	// Verify confirms a transaction reported by a status callback.
	Verify(ctx context.Context, fields Fields) (*Reply, error)

	// TestConnection checks the configured credentials.
	TestConnection(ctx context.Context) (*Reply, error)

	// RequestURL builds the payment page URL bound to a registration token.
	RequestURL(token string, redirect bool) string
}

// Logger receives configuration failures from a Handler.
type Logger interface {
	Error(msg string)
}
