package payment

import (
	"context"
	"fmt"
)

// Stage is a step of a Handler flow.
type Stage int

const (
	StageIdle Stage = iota
	StageConfiguringCredentials
	StageAwaitingGatewayReply
	StageDecoding
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageConfiguringCredentials:
		return "configuring_credentials"
	case StageAwaitingGatewayReply:
		return "awaiting_gateway_reply"
	case StageDecoding:
		return "decoding"
	case StageDone:
		return "done"
	default:
		return "idle"
	}
}

// Handler runs the register, verify, redirect and credential-check flows
// against a Gateway. A Handler holds no per-call state and is safe for
// concurrent use; ViaCredentials returns a new Handler.
type Handler struct {
	gateway     Gateway
	mode        CredentialMode
	defaults    Credentials
	credentials *Credentials
	logger      Logger
}

// NewHandler creates a handler. The credential mode is read from cfg once.
func NewHandler(gateway Gateway, cfg ConfigProvider, logger Logger) *Handler {
	mode := CredentialsGlobal
	if cfg.CredentialsScope() {
		mode = CredentialsPerCall
	}
	return &Handler{
		gateway:  gateway,
		mode:     mode,
		defaults: cfg.Credentials(),
		logger:   logger,
	}
}

// Mode returns the credential mode chosen at construction.
func (h *Handler) Mode() CredentialMode {
	return h.mode
}

// ViaCredentials returns a copy of h that uses creds in per-call mode.
// In global mode the credentials are ignored.
func (h *Handler) ViaCredentials(creds Credentials) *Handler {
	cp := *h
	cp.credentials = &creds
	return &cp
}

// flow tracks the stage of one call.
type flow struct {
	stage Stage
}

func (f *flow) enter(s Stage) {
	f.stage = s
}

// RegisterPayment registers a new transaction. fields must carry
// p24_session_id. It never panics or returns a nil Response.
func (h *Handler) RegisterPayment(ctx context.Context, fields Fields) (resp Response) {
	f := &flow{}
	defer h.recoverResponse(f, &resp)

	gateway, _, err := h.configure(f)
	if err != nil {
		return h.fail(f, err)
	}

	sessionID, ok := fields[FieldSessionID]
	if !ok {
		return h.fail(f, fmt.Errorf("%w: %s", ErrMissingField, FieldSessionID))
	}

	f.enter(StageAwaitingGatewayReply)
	reply, err := gateway.Register(ctx, fields)
	if err != nil {
		return h.fail(f, err)
	}

	f.enter(StageDecoding)
	outcome := Decode(reply.Body, fields)
	outcome.SessionID = sessionID

	f.enter(StageDone)
	return Register{outcomeView{outcome}}
}

// VerifyPayment confirms a transaction reported by a status callback. With
// verifyChecksum set, the callback signature is checked first and the gateway
// is only called when it matches. On a mismatch the Verify response carries
// the callback as ReceiveParameters and nothing else.
func (h *Handler) VerifyPayment(ctx context.Context, callback Fields, verifyChecksum bool) (resp Response) {
	f := &flow{}
	defer h.recoverResponse(f, &resp)

	gateway, creds, err := h.configure(f)
	if err != nil {
		return h.fail(f, err)
	}

	if verifyChecksum && !VerifyChecksum(callback, creds) {
		f.enter(StageDone)
		return Verify{
			outcomeView:   outcomeView{&DecodedOutcome{ReceiveParameters: callback.Clone()}},
			checksumValid: false,
		}
	}

	fields := make(Fields, 4)
	for _, name := range []string{FieldSessionID, FieldOrderID, FieldAmount, FieldCurrency} {
		v, ok := callback[name]
		if !ok {
			return h.fail(f, fmt.Errorf("%w: %s", ErrMissingField, name))
		}
		fields[name] = v
	}

	f.enter(StageAwaitingGatewayReply)
	reply, err := gateway.Verify(ctx, fields)
	if err != nil {
		return h.fail(f, err)
	}

	f.enter(StageDecoding)
	outcome := Decode(reply.Body, fields)
	outcome.ReceiveParameters = callback.Clone()
	outcome.SessionID = fields[FieldSessionID]
	outcome.OrderID = fields[FieldOrderID]

	f.enter(StageDone)
	return Verify{outcomeView: outcomeView{outcome}, checksumValid: true}
}

// BuildRedirectURL returns the payment page URL for token. When the gateway
// cannot be configured, or anything else fails, the failure message is
// returned in place of the URL instead of an Invalid response.
func (h *Handler) BuildRedirectURL(token string, redirect bool) (u RedirectURL) {
	f := &flow{}
	defer func() {
		if r := recover(); r != nil {
			u = RedirectURL(fmt.Sprint(r))
		}
	}()

	gateway, _, err := h.configure(f)
	if err != nil {
		h.logFailure(err)
		return RedirectURL(err.Error())
	}

	f.enter(StageDone)
	return RedirectURL(gateway.RequestURL(token, redirect))
}

// CheckCredentials tests the configured credentials against the gateway.
func (h *Handler) CheckCredentials(ctx context.Context) (resp Response) {
	f := &flow{}
	defer h.recoverResponse(f, &resp)

	gateway, _, err := h.configure(f)
	if err != nil {
		return h.fail(f, err)
	}

	f.enter(StageAwaitingGatewayReply)
	reply, err := gateway.TestConnection(ctx)
	if err != nil {
		return h.fail(f, err)
	}

	f.enter(StageDecoding)
	outcome := Decode(reply.Body, reply.FormParams)

	f.enter(StageDone)
	return TestConnection{outcomeView{outcome}}
}

// configure resolves the gateway and credentials for one call.
func (h *Handler) configure(f *flow) (Gateway, Credentials, error) {
	f.enter(StageConfiguringCredentials)

	if h.mode == CredentialsGlobal {
		return h.gateway, h.defaults, nil
	}
	if h.credentials == nil {
		return nil, Credentials{}, ErrMissingCredentials
	}
	creds := *h.credentials
	if creds.Environment == EnvironmentUnset {
		return nil, Credentials{}, ErrNoEnvironmentSelected
	}

	gateway, err := h.gateway.Configure(creds)
	if err != nil {
		return nil, Credentials{}, err
	}
	return gateway, creds, nil
}

func (h *Handler) fail(f *flow, err error) Response {
	h.logFailure(err)
	return Invalid{err: err, stage: f.stage}
}

func (h *Handler) logFailure(err error) {
	if Kind(err).Logged() && h.logger != nil {
		h.logger.Error(err.Error())
	}
}

func (h *Handler) recoverResponse(f *flow, resp *Response) {
	if r := recover(); r != nil {
		*resp = Invalid{err: fmt.Errorf("%v", r), stage: f.stage}
	}
}
