// Package capture implements the capture session store operations:
// ingestion, entry edits, queries, and the consolidation engine (merge,
// bulk delete, full reset). Every mutation runs in exactly one transaction.
package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"capture-backend/internal/catalog"
	"capture-backend/internal/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultDeviceLabel   = "Unknown Device"
	DefaultDeviceAddress = "0.0.0.0"
	MergedDeviceLabel    = "Merged by user"

	defaultListLimit = 100
)

type Options struct {
	// ListLimit caps ListSessions. Zero means 100.
	ListLimit int
	// Retries is the number of attempts for a transaction that hit a
	// serialization failure or deadlock. Zero means 1.
	Retries int
	Metrics *metrics.Metrics
	// Now is the clock; tests pin it.
	Now func() time.Time
}

type Service struct {
	db        *gorm.DB
	catalog   *catalog.Catalog
	log       *zap.Logger
	metrics   *metrics.Metrics
	listLimit int
	retries   int
	now       func() time.Time
}

func NewService(db *gorm.DB, cat *catalog.Catalog, log *zap.Logger, opts Options) *Service {
	s := &Service{
		db:        db,
		catalog:   cat,
		log:       log,
		metrics:   opts.Metrics,
		listLimit: opts.ListLimit,
		retries:   opts.Retries,
		now:       opts.Now,
	}
	if s.listLimit <= 0 {
		s.listLimit = defaultListLimit
	}
	if s.retries <= 0 {
		s.retries = 1
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Now returns the service clock in the stored representation.
func (s *Service) Now() time.Time {
	return canonical(s.now())
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// inTx runs fn in one transaction. Serialization failures and deadlocks
// are retried; any other store error is reported as ErrTransactionFailure.
// fn must not leak state between attempts.
func (s *Service) inTx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	started := time.Now()

	var err error
	for attempt := 1; attempt <= s.retries; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isRetryable(err) {
			break
		}
		s.log.Warn("transaction conflict",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	if err != nil && !isDomainError(err) {
		s.log.Error("transaction rolled back", zap.String("operation", op), zap.Error(err))
		err = fmt.Errorf("%s: %w: %w", op, ErrTransactionFailure, err)
	}

	s.metrics.Observe(op, started, err)
	return err
}

func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}

// uniqueIDs drops duplicates and zero ids, keeping first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
