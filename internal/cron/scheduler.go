package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"transfers24/internal/metrics"
	"transfers24/internal/models"
	"transfers24/internal/notify"
	"transfers24/internal/payment"
)

const DefaultHealthSpec = "0 */15 * * * *"

// CredentialChecker is satisfied by *payment.Handler.
type CredentialChecker interface {
	CheckCredentials(ctx context.Context) payment.Response
}

// TransactionStore persists audit rows.
type TransactionStore interface {
	Create(tx *models.Transaction) error
}

// Scheduler runs the periodic gateway jobs.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	checker  CredentialChecker
	store    TransactionStore
	notifier notify.Notifier
	logger   *zap.Logger
	timeout  time.Duration

	mu      sync.Mutex
	healthy bool
}

// New creates a new cron scheduler. store and notifier may be nil.
func New(spec string, checker CredentialChecker, store TransactionStore, notifier notify.Notifier, logger *zap.Logger) *Scheduler {
	if spec == "" {
		spec = DefaultHealthSpec
	}
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		spec:     spec,
		checker:  checker,
		store:    store,
		notifier: notifier,
		logger:   logger,
		timeout:  30 * time.Second,
		healthy:  true,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting cron scheduler...", zap.String("credential_check", s.spec))

	if _, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Debug("Running: credential check")
		s.CheckCredentials()
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// CheckCredentials tests the configured credentials once. The admin is
// notified when the check starts failing, not on every failed run.
func (s *Scheduler) CheckCredentials() payment.Response {
	defer s.recoverFromPanic("checkCredentials")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	resp := s.checker.CheckCredentials(ctx)
	metrics.Observe("test_connection", resp, start)

	if s.store != nil {
		if err := s.store.Create(models.NewTransaction(resp)); err != nil {
			s.logger.Warn("Failed to save credential check", zap.Error(err))
		}
	}

	s.mu.Lock()
	wasHealthy := s.healthy
	s.healthy = resp.IsSuccess()
	s.mu.Unlock()

	if resp.IsSuccess() {
		if !wasHealthy {
			s.logger.Info("Credential check recovered")
		}
		return resp
	}

	s.logger.Warn("Credential check failed",
		zap.String("kind", string(resp.Kind())),
		zap.String("status", resp.ErrorCode().String()),
	)
	if wasHealthy {
		s.notifier.CredentialsFailed(ctx, resp)
	}
	return resp
}

func (s *Scheduler) recoverFromPanic(jobName string) {
	if r := recover(); r != nil {
		s.logger.Error("Cron job panicked", zap.String("job", jobName), zap.Any("error", r))
	}
}
