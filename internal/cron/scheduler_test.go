package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transfers24/internal/models"
	"transfers24/internal/payment"
)

type okResponse struct {
	payment.Invalid
}

func (okResponse) Kind() payment.ResponseKind { return payment.KindTestConnection }
func (okResponse) IsSuccess() bool { return true }

type scriptedChecker struct {
	responses []payment.Response
	calls     int
}

func (c *scriptedChecker) CheckCredentials(context.Context) payment.Response {
	resp := c.responses[c.calls]
	c.calls++
	return resp
}

type memoryStore struct {
	rows []*models.Transaction
	err  error
}

func (m *memoryStore) Create(tx *models.Transaction) error {
	m.rows = append(m.rows, tx)
	return m.err
}

type countingNotifier struct {
	failed int
}

func (n *countingNotifier) PaymentVerified(context.Context, payment.Response) {}
func (n *countingNotifier) CredentialsFailed(context.Context, payment.Response) {
	n.failed++
}

func TestCheckCredentials_NotifiesOnTransition(t *testing.T) {
	checker := &scriptedChecker{responses: []payment.Response{
		okResponse{},
		payment.Invalid{},
		payment.Invalid{},
		okResponse{},
		payment.Invalid{},
	}}
	store := &memoryStore{}
	notifier := &countingNotifier{}
	s := New("", checker, store, notifier, zap.NewNop())

	for range checker.responses {
		s.CheckCredentials()
	}

	assert.Equal(t, 2, notifier.failed)
	require.Len(t, store.rows, 5)
	assert.Equal(t, "test_connection", store.rows[0].Kind)
	assert.Equal(t, "invalid", store.rows[1].Kind)
}

func TestCheckCredentials_StoreErrorIsNotFatal(t *testing.T) {
	checker := &scriptedChecker{responses: []payment.Response{okResponse{}}}
	s := New("", checker, &memoryStore{err: errors.New("db down")}, nil, zap.NewNop())

	resp := s.CheckCredentials()
	assert.True(t, resp.IsSuccess())
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New("not a spec", &scriptedChecker{}, nil, nil, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := New(DefaultHealthSpec, &scriptedChecker{}, nil, nil, zap.NewNop())
	require.NoError(t, s.Start())
	<-s.Stop().Done()
}
