package models

import (
	"encoding/json"
	"time"

	"transfers24/internal/payment"
)

// Transaction is one audit row per gateway flow. Maps to `p24_transactions`.
type Transaction struct {
	ID                uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Kind              string    `gorm:"column:kind;size:32;index" json:"kind"`
	SessionID         string    `gorm:"column:session_id;size:100;index" json:"session_id"`
	OrderID           string    `gorm:"column:order_id;size:100;index" json:"order_id"`
	StatusCode        string    `gorm:"column:status_code;size:32" json:"status_code"`
	Success           bool      `gorm:"column:success" json:"success"`
	Token             string    `gorm:"column:token;size:200" json:"token,omitempty"`
	Failure           string    `gorm:"column:failure;type:text" json:"failure,omitempty"`
	ErrorMessages     string    `gorm:"column:error_messages;type:text" json:"error_messages,omitempty"`
	RequestParameters string    `gorm:"column:request_parameters;type:text" json:"request_parameters,omitempty"`
	ReceiveParameters string    `gorm:"column:receive_parameters;type:text" json:"receive_parameters,omitempty"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Transaction) TableName() string {
	return "p24_transactions"
}

// NewTransaction builds the audit row for resp. The credential secret never
// reaches the response, so parameters are stored as received.
func NewTransaction(resp payment.Response) *Transaction {
	tx := &Transaction{
		Kind:              string(resp.Kind()),
		SessionID:         resp.SessionID(),
		OrderID:           resp.OrderID(),
		Success:           resp.IsSuccess(),
		Token:             resp.Token(),
		ErrorMessages:     encodeJSON(resp.ErrorDescriptions()),
		RequestParameters: encodeJSON(resp.RequestParameters()),
		ReceiveParameters: encodeJSON(resp.ReceiveParameters()),
	}
	if code, ok := resp.ErrorCode().Value(); ok {
		tx.StatusCode = code
	}
	if invalid, ok := resp.(payment.Invalid); ok {
		tx.Failure = invalid.Reason()
	}
	return tx
}

func encodeJSON(v interface{}) string {
	switch x := v.(type) {
	case payment.ErrorMessages:
		if len(x) == 0 {
			return ""
		}
	case payment.Fields:
		if len(x) == 0 {
			return ""
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
