package models

import "transfers24/internal/payment"

// APIResponse is the standard JSON envelope of the HTTP API.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// RegisterPaymentRequest is the body of POST /payments.
// Amount is in PLN with up to two decimals, e.g. "12.50".
type RegisterPaymentRequest struct {
	SessionID   string `json:"session_id,omitempty"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description,omitempty"`
	Email       string `json:"email"`
	Country     string `json:"country,omitempty"`
	Language    string `json:"language,omitempty"`
}

// OutcomeView is the JSON form of a payment.Response.
type OutcomeView struct {
	Kind              string                `json:"kind"`
	Success           bool                  `json:"success"`
	StatusCode        string                `json:"status_code,omitempty"`
	Token             string                `json:"token,omitempty"`
	SessionID         string                `json:"session_id,omitempty"`
	OrderID           string                `json:"order_id,omitempty"`
	Errors            payment.ErrorMessages `json:"errors,omitempty"`
	RequestParameters payment.Fields        `json:"request_parameters,omitempty"`
	Failure           string                `json:"failure,omitempty"`
	RedirectURL       string                `json:"redirect_url,omitempty"`
}

// NewOutcomeView converts resp for JSON output.
func NewOutcomeView(resp payment.Response) OutcomeView {
	v := OutcomeView{
		Kind:              string(resp.Kind()),
		Success:           resp.IsSuccess(),
		Token:             resp.Token(),
		SessionID:         resp.SessionID(),
		OrderID:           resp.OrderID(),
		RequestParameters: resp.RequestParameters(),
	}
	if code, ok := resp.ErrorCode().Value(); ok {
		v.StatusCode = code
	}
	if errs := resp.ErrorDescriptions(); len(errs) > 0 {
		v.Errors = errs
	}
	if invalid, ok := resp.(payment.Invalid); ok {
		v.Failure = invalid.Reason()
	}
	return v
}

// PaginatedResponse wraps paginated data.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}
