package przelewy24

import (
	"context"
	"fmt"
	"strings"
	"time"

	"transfers24/internal/payment"
	"transfers24/internal/pkg/httpclient"
)

// APIVersion is the legacy API revision sent with every registration.
const APIVersion = "3.2"

const (
	liveURL    = "https://secure.przelewy24.pl"
	sandboxURL = "https://sandbox.przelewy24.pl"
)

// Client implements payment.Gateway for Przelewy24.
type Client struct {
	creds   payment.Credentials
	baseURL string
	client  *httpclient.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL points the client at a fixed host instead of the
// environment's live or sandbox host.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(hc *httpclient.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

func New(creds payment.Credentials, opts ...Option) *Client {
	c := &Client{
		creds:  creds,
		client: httpclient.New().WithTimeout(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure returns a copy of the client bound to creds. The HTTP transport
// is shared.
func (c *Client) Configure(creds payment.Credentials) (payment.Gateway, error) {
	if creds.Environment == payment.EnvironmentUnset {
		return nil, payment.ErrNoEnvironmentSelected
	}
	cp := *c
	cp.creds = creds
	return &cp, nil
}

func (c *Client) host() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if c.creds.TestMode() {
		return sandboxURL
	}
	return liveURL
}

// Register posts /trnRegister. Merchant identity, API version and p24_sign
// are added to a copy of fields.
func (c *Client) Register(ctx context.Context, fields payment.Fields) (*payment.Reply, error) {
	form := c.merchantForm(fields)
	if _, ok := form[payment.FieldAPIVersion]; !ok {
		form[payment.FieldAPIVersion] = APIVersion
	}
	form[payment.FieldSign] = payment.Checksum(c.creds.CRC,
		fields[payment.FieldSessionID],
		form[payment.FieldMerchantID],
		fields[payment.FieldAmount],
		fields[payment.FieldCurrency],
	)
	return c.post(ctx, "/trnRegister", form)
}

// Verify posts /trnVerify.
func (c *Client) Verify(ctx context.Context, fields payment.Fields) (*payment.Reply, error) {
	form := c.merchantForm(fields)
	form[payment.FieldSign] = payment.Checksum(c.creds.CRC,
		fields[payment.FieldSessionID],
		fields[payment.FieldOrderID],
		fields[payment.FieldAmount],
		fields[payment.FieldCurrency],
	)
	return c.post(ctx, "/trnVerify", form)
}

// TestConnection posts /testConnection.
func (c *Client) TestConnection(ctx context.Context) (*payment.Reply, error) {
	form := c.merchantForm(nil)
	form[payment.FieldSign] = payment.Checksum(c.creds.CRC, c.creds.PosID)
	return c.post(ctx, "/testConnection", form)
}

// RequestURL returns the payment page for token. The gateway has a single
// payment page, so redirect does not change the URL; performing the redirect
// is left to the caller.
func (c *Client) RequestURL(token string, redirect bool) string {
	return c.host() + "/trnRequest/" + token
}

func (c *Client) merchantForm(fields payment.Fields) payment.Fields {
	form := fields.Clone()
	if form == nil {
		form = make(payment.Fields, 3)
	}
	form[payment.FieldMerchantID] = c.creds.MerchantID
	form[payment.FieldPosID] = c.creds.PosID
	return form
}

func (c *Client) post(ctx context.Context, path string, form payment.Fields) (*payment.Reply, error) {
	resp, err := c.client.PostForm(ctx, c.host()+path, form)
	if err != nil {
		return nil, fmt.Errorf("przelewy24 %s failed: %w", strings.TrimPrefix(path, "/"), err)
	}
	return &payment.Reply{
		StatusCode: resp.StatusCode,
		Body:       string(resp.Body),
		FormParams: form,
	}, nil
}
