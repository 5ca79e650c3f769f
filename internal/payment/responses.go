package payment

// ResponseKind names the flow that produced a Response.
type ResponseKind string

const (
	KindRegister       ResponseKind = "register"
	KindVerify         ResponseKind = "verify"
	KindTestConnection ResponseKind = "test_connection"
	KindInvalid        ResponseKind = "invalid"
)

// Response is the read-only result of a Handler flow.
type Response interface {
	Kind() ResponseKind
	IsSuccess() bool
	Token() string
	ErrorCode() StatusCode
	ErrorDescriptions() ErrorMessages
	RequestParameters() Fields
	ReceiveParameters() Fields
	OrderID() string
	SessionID() string
	// Fields returns every decoded body field, including ones the decoder
	// does not classify (refund info, for example).
	Fields() []Field
}

// outcomeView exposes a DecodedOutcome. Accessors hand out copies so the
// outcome cannot be changed through them.
type outcomeView struct {
	outcome *DecodedOutcome
}

func (v outcomeView) IsSuccess() bool { return v.outcome.Status.Success() }
func (v outcomeView) Token() string { return v.outcome.Token }
func (v outcomeView) ErrorCode() StatusCode { return v.outcome.Status }
func (v outcomeView) OrderID() string { return v.outcome.OrderID }
func (v outcomeView) SessionID() string { return v.outcome.SessionID }

func (v outcomeView) ErrorDescriptions() ErrorMessages {
	if v.outcome.ErrorMessages == nil {
		return nil
	}
	return append(ErrorMessages(nil), v.outcome.ErrorMessages...)
}

func (v outcomeView) RequestParameters() Fields { return v.outcome.RequestParameters.Clone() }
func (v outcomeView) ReceiveParameters() Fields { return v.outcome.ReceiveParameters.Clone() }

func (v outcomeView) Fields() []Field {
	if v.outcome.Body == nil {
		return nil
	}
	return append([]Field(nil), v.outcome.Body...)
}

// Register is the result of RegisterPayment.
type Register struct{ outcomeView }

func (Register) Kind() ResponseKind { return KindRegister }

// Verify is the result of VerifyPayment.
type Verify struct {
	outcomeView
	checksumValid bool
}

func (Verify) Kind() ResponseKind { return KindVerify }

// ChecksumValid is false when the callback signature was checked and did not
// match; the gateway was not called in that case.
func (v Verify) ChecksumValid() bool { return v.checksumValid }

func (v Verify) IsSuccess() bool {
	return v.checksumValid && v.outcomeView.IsSuccess()
}

// TestConnection is the result of CheckCredentials.
type TestConnection struct{ outcomeView }

func (TestConnection) Kind() ResponseKind { return KindTestConnection }

// Invalid is returned when a flow fails before producing a decoded reply.
type Invalid struct {
	err   error
	stage Stage
}

func (Invalid) Kind() ResponseKind { return KindInvalid }
func (Invalid) IsSuccess() bool { return false }
func (Invalid) Token() string { return "" }
func (Invalid) ErrorCode() StatusCode { return StatusCode{} }
func (Invalid) ErrorDescriptions() ErrorMessages { return nil }
func (Invalid) RequestParameters() Fields { return nil }
func (Invalid) ReceiveParameters() Fields { return nil }
func (Invalid) OrderID() string { return "" }
func (Invalid) SessionID() string { return "" }
func (Invalid) Fields() []Field { return nil }

// Err returns the failure.
func (i Invalid) Err() error { return i.err }

// Reason returns the failure message.
func (i Invalid) Reason() string {
	if i.err == nil {
		return ""
	}
	return i.err.Error()
}

// FailureKind classifies the failure.
func (i Invalid) FailureKind() FailureKind { return Kind(i.err) }

// Stage is the flow stage the failure happened in.
func (i Invalid) Stage() Stage { return i.stage }

// RedirectURL is what BuildRedirectURL returns: the payment page URL, or the
// failure message in its place when the gateway could not be configured.
// Unlike the other flows it is not a Response.
type RedirectURL string

func (u RedirectURL) String() string { return string(u) }
