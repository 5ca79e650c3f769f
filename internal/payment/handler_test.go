package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Implementations ---

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Configure(creds Credentials) (Gateway, error) {
	args := m.Called(creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Gateway), args.Error(1)
}

func (m *MockGateway) Register(ctx context.Context, fields Fields) (*Reply, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reply), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, fields Fields) (*Reply, error) {
	args := m.Called(ctx, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reply), args.Error(1)
}

func (m *MockGateway) TestConnection(ctx context.Context) (*Reply, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Reply), args.Error(1)
}

func (m *MockGateway) RequestURL(token string, redirect bool) string {
	args := m.Called(token, redirect)
	return args.String(0)
}

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Error(msg string) {
	m.Called(msg)
}

type staticConfig struct {
	perCall bool
	creds   Credentials
}

func (c staticConfig) CredentialsScope() bool { return c.perCall }
func (c staticConfig) Credentials() Credentials { return c.creds }

var globalCreds = Credentials{PosID: "1000", MerchantID: "1000", CRC: "crc-key", Environment: EnvironmentSandbox}

func newGlobalHandler(gw *MockGateway, logger *MockLogger) *Handler {
	return NewHandler(gw, staticConfig{creds: globalCreds}, logger)
}

func newPerCallHandler(gw *MockGateway, logger *MockLogger) *Handler {
	return NewHandler(gw, staticConfig{perCall: true}, logger)
}

func reply(body string) *Reply {
	return &Reply{StatusCode: 200, Body: body}
}

func registerFields() Fields {
	return Fields{
		FieldSessionID: "sess-1",
		FieldAmount:    "1500",
		FieldCurrency:  "PLN",
		"p24_email":    "payer@example.com",
	}
}

// --- Register ---

func TestRegisterPayment_Success(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	fields := registerFields()
	gw.On("Register", mock.Anything, fields).Return(reply("error=0&token=TOKEN-1"), nil).Once()

	resp := newGlobalHandler(gw, logger).RegisterPayment(context.Background(), fields)

	require.IsType(t, Register{}, resp)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "TOKEN-1", resp.Token())
	assert.Equal(t, "sess-1", resp.SessionID())
	assert.Equal(t, fields, resp.RequestParameters())
	assert.Empty(t, resp.ErrorDescriptions())
	gw.AssertExpectations(t)
	logger.AssertNotCalled(t, "Error", mock.Anything)
}

func TestRegisterPayment_GatewayReportedError(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Register", mock.Anything, mock.Anything).
		Return(reply("error=err00&errorMessage=p24_sign:Invalid sign"), nil)

	resp := newGlobalHandler(gw, new(MockLogger)).RegisterPayment(context.Background(), registerFields())

	require.IsType(t, Register{}, resp)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, NewStatusCode("err00"), resp.ErrorCode())
	desc, ok := resp.ErrorDescriptions().Get("p24_sign")
	assert.True(t, ok)
	assert.Equal(t, "Invalid sign", desc)
}

func TestRegisterPayment_UnclassifiedFieldsPassThrough(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Register", mock.Anything, mock.Anything).
		Return(reply("error=0&token=T&refund_amount=500&refund_id=R1"), nil)

	resp := newGlobalHandler(gw, new(MockLogger)).RegisterPayment(context.Background(), registerFields())

	assert.Equal(t, KindRegister, resp.Kind())
	assert.Equal(t, []Field{
		{Name: "error", Value: "0"},
		{Name: "token", Value: "T"},
		{Name: "refund_amount", Value: "500"},
		{Name: "refund_id", Value: "R1"},
	}, resp.Fields())

	fields := resp.Fields()
	fields[0].Value = "changed"
	assert.Equal(t, "0", resp.Fields()[0].Value)
}

func TestRegisterPayment_MissingCredentials(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	logger.On("Error", ErrMissingCredentials.Error()).Return().Once()

	resp := newPerCallHandler(gw, logger).RegisterPayment(context.Background(), registerFields())

	require.IsType(t, Invalid{}, resp)
	invalid := resp.(Invalid)
	assert.False(t, invalid.IsSuccess())
	assert.ErrorIs(t, invalid.Err(), ErrMissingCredentials)
	assert.Equal(t, FailureMissingCredentials, invalid.FailureKind())
	assert.Equal(t, StageConfiguringCredentials, invalid.Stage())
	logger.AssertNumberOfCalls(t, "Error", 1)
	gw.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterPayment_NoEnvironmentSelected(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	logger.On("Error", ErrNoEnvironmentSelected.Error()).Return().Once()

	h := newPerCallHandler(gw, logger).ViaCredentials(Credentials{PosID: "1", MerchantID: "1", CRC: "c"})
	resp := h.RegisterPayment(context.Background(), registerFields())

	require.IsType(t, Invalid{}, resp)
	assert.Equal(t, FailureNoEnvironment, resp.(Invalid).FailureKind())
	logger.AssertExpectations(t)
}

func TestRegisterPayment_ConfigureErrorFromGatewayIsLogged(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	creds := Credentials{PosID: "1", MerchantID: "1", CRC: "c", Environment: EnvironmentLive}
	gw.On("Configure", creds).Return(nil, ErrNoEnvironmentSelected)
	logger.On("Error", ErrNoEnvironmentSelected.Error()).Return().Once()

	resp := newPerCallHandler(gw, logger).ViaCredentials(creds).RegisterPayment(context.Background(), registerFields())

	assert.Equal(t, KindInvalid, resp.Kind())
	logger.AssertExpectations(t)
}

func TestRegisterPayment_PerCallCredentials(t *testing.T) {
	gw := new(MockGateway)
	configured := new(MockGateway)
	creds := Credentials{PosID: "9", MerchantID: "9", CRC: "c9", Environment: EnvironmentLive}
	gw.On("Configure", creds).Return(configured, nil).Once()
	configured.On("Register", mock.Anything, mock.Anything).Return(reply("error=0&token=T9"), nil).Once()

	base := newPerCallHandler(gw, new(MockLogger))
	resp := base.ViaCredentials(creds).RegisterPayment(context.Background(), registerFields())

	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "T9", resp.Token())
	assert.Equal(t, CredentialsPerCall, base.Mode())
	gw.AssertExpectations(t)
	configured.AssertExpectations(t)
}

func TestRegisterPayment_TransportFailureIsNotLogged(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	gw.On("Register", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	resp := newGlobalHandler(gw, logger).RegisterPayment(context.Background(), registerFields())

	require.IsType(t, Invalid{}, resp)
	invalid := resp.(Invalid)
	assert.Equal(t, "connection refused", invalid.Reason())
	assert.Equal(t, FailureUnclassified, invalid.FailureKind())
	assert.Equal(t, StageAwaitingGatewayReply, invalid.Stage())
	logger.AssertNotCalled(t, "Error", mock.Anything)
}

func TestRegisterPayment_MissingSessionID(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)

	resp := newGlobalHandler(gw, logger).RegisterPayment(context.Background(), Fields{FieldAmount: "1"})

	require.IsType(t, Invalid{}, resp)
	assert.ErrorIs(t, resp.(Invalid).Err(), ErrMissingField)
	gw.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	logger.AssertNotCalled(t, "Error", mock.Anything)
}

func TestRegisterPayment_PanicBecomesInvalid(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Register", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("gateway exploded")
	})

	resp := newGlobalHandler(gw, new(MockLogger)).RegisterPayment(context.Background(), registerFields())

	require.IsType(t, Invalid{}, resp)
	assert.Equal(t, "gateway exploded", resp.(Invalid).Reason())
}

// --- Verify ---

func TestVerifyPayment_ChecksumFailureSkipsGateway(t *testing.T) {
	gw := new(MockGateway)
	callback := signedCallback("someone-else")

	resp := newGlobalHandler(gw, new(MockLogger)).VerifyPayment(context.Background(), callback, true)

	require.IsType(t, Verify{}, resp)
	verify := resp.(Verify)
	assert.False(t, verify.ChecksumValid())
	assert.False(t, verify.IsSuccess())
	assert.Equal(t, callback, verify.ReceiveParameters())
	assert.Empty(t, verify.SessionID())
	assert.Empty(t, verify.OrderID())
	assert.Nil(t, verify.RequestParameters())
	assert.True(t, verify.ErrorCode().Indeterminate())
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestVerifyPayment_Success(t *testing.T) {
	gw := new(MockGateway)
	callback := signedCallback(globalCreds.CRC)
	sent := Fields{
		FieldSessionID: "sess-1",
		FieldOrderID:   "12345",
		FieldAmount:    "1500",
		FieldCurrency:  "PLN",
	}
	gw.On("Verify", mock.Anything, sent).Return(reply("error=0"), nil).Once()

	resp := newGlobalHandler(gw, new(MockLogger)).VerifyPayment(context.Background(), callback, true)

	require.IsType(t, Verify{}, resp)
	assert.True(t, resp.IsSuccess())
	assert.True(t, resp.(Verify).ChecksumValid())
	assert.Equal(t, "sess-1", resp.SessionID())
	assert.Equal(t, "12345", resp.OrderID())
	assert.Equal(t, callback, resp.ReceiveParameters())
	assert.Equal(t, sent, resp.RequestParameters())
	gw.AssertExpectations(t)
}

func TestVerifyPayment_WithoutChecksumStillCallsGateway(t *testing.T) {
	gw := new(MockGateway)
	callback := signedCallback("not-checked")
	gw.On("Verify", mock.Anything, mock.Anything).Return(reply("error=err03"), nil).Once()

	resp := newGlobalHandler(gw, new(MockLogger)).VerifyPayment(context.Background(), callback, false)

	require.IsType(t, Verify{}, resp)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, NewStatusCode("err03"), resp.ErrorCode())
	gw.AssertExpectations(t)
}

func TestVerifyPayment_MissingFieldWithoutChecksum(t *testing.T) {
	gw := new(MockGateway)

	resp := newGlobalHandler(gw, new(MockLogger)).VerifyPayment(context.Background(), Fields{FieldSessionID: "s"}, false)

	require.IsType(t, Invalid{}, resp)
	assert.ErrorIs(t, resp.(Invalid).Err(), ErrMissingField)
	gw.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestVerifyPayment_MissingCredentials(t *testing.T) {
	logger := new(MockLogger)
	logger.On("Error", ErrMissingCredentials.Error()).Return().Once()

	resp := newPerCallHandler(new(MockGateway), logger).VerifyPayment(context.Background(), signedCallback("x"), true)

	assert.Equal(t, KindInvalid, resp.Kind())
	logger.AssertExpectations(t)
}

// --- Redirect ---

func TestBuildRedirectURL(t *testing.T) {
	gw := new(MockGateway)
	gw.On("RequestURL", "TOKEN-1", true).Return("https://sandbox.przelewy24.pl/trnRequest/TOKEN-1")

	got := newGlobalHandler(gw, new(MockLogger)).BuildRedirectURL("TOKEN-1", true)

	assert.Equal(t, RedirectURL("https://sandbox.przelewy24.pl/trnRequest/TOKEN-1"), got)
}

func TestBuildRedirectURL_MissingCredentialsReturnsMessage(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	logger.On("Error", ErrMissingCredentials.Error()).Return().Once()

	got := newPerCallHandler(gw, logger).BuildRedirectURL("TOKEN-1", false)

	assert.Equal(t, ErrMissingCredentials.Error(), got.String())
	logger.AssertNumberOfCalls(t, "Error", 1)
	gw.AssertNotCalled(t, "RequestURL", mock.Anything, mock.Anything)
}

func TestBuildRedirectURL_PanicReturnsMessage(t *testing.T) {
	gw := new(MockGateway)
	gw.On("RequestURL", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("bad token")
	})

	got := newGlobalHandler(gw, new(MockLogger)).BuildRedirectURL("x", false)

	assert.Equal(t, RedirectURL("bad token"), got)
}

// --- Check credentials ---

func TestCheckCredentials(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{name: "connection failed", code: "100", want: false},
		{name: "connection passed", code: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			gw.On("TestConnection", mock.Anything).
				Return(&Reply{StatusCode: 200, Body: ErrorLabel + "=" + tt.code, FormParams: Fields{FieldPosID: "1000"}}, nil).
				Once()

			resp := newGlobalHandler(gw, new(MockLogger)).CheckCredentials(context.Background())

			require.IsType(t, TestConnection{}, resp)
			assert.Equal(t, tt.want, resp.IsSuccess())
			assert.Equal(t, Fields{FieldPosID: "1000"}, resp.RequestParameters())
			gw.AssertExpectations(t)
		})
	}
}

func TestCheckCredentials_TransportFailure(t *testing.T) {
	gw := new(MockGateway)
	logger := new(MockLogger)
	gw.On("TestConnection", mock.Anything).Return(nil, errors.New("timeout"))

	resp := newGlobalHandler(gw, logger).CheckCredentials(context.Background())

	assert.Equal(t, KindInvalid, resp.Kind())
	logger.AssertNotCalled(t, "Error", mock.Anything)
}

func TestViaCredentials_DoesNotMutateBase(t *testing.T) {
	logger := new(MockLogger)
	logger.On("Error", mock.Anything).Return()
	base := newPerCallHandler(new(MockGateway), logger)

	_ = base.ViaCredentials(globalCreds)
	resp := base.CheckCredentials(context.Background())

	assert.ErrorIs(t, resp.(Invalid).Err(), ErrMissingCredentials)
}
