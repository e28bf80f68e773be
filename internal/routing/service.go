// internal/routing/service.go
package routing

import (
	"context"
	"time"

	stderrors "marketplace-routing/internal/common/errors"
	"marketplace-routing/internal/common/logger"
	"marketplace-routing/internal/common/metrics"
	"marketplace-routing/internal/common/observability"
	"marketplace-routing/internal/models"
	"marketplace-routing/internal/routing/quota"
)

// ItemStore persists items and their routing decisions.
type ItemStore interface {
	GetItem(ctx context.Context, id string) (*models.Item, error)
	// SaveDecision writes the decision and the quota bookkeeping onto the
	// item in one statement. quotaKey/bucket are empty when the decision
	// holds no reservation.
	SaveDecision(ctx context.Context, itemID string, d *Decision, quotaKey string, bucket quota.Bucket) error
}

// ReviewNotifier pushes needs-review decisions to the manual-review workflow.
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, item *models.Item, d *Decision) error
}

// AuditRecorder feeds decisions to the audit index consumed by the admin
// UI and the per-channel exporters.
type AuditRecorder interface {
	RecordDecision(ctx context.Context, itemID string, d *Decision) error
}

// ConfigSource returns the routing configuration as of now. It is invoked
// once per decision so hot reloads take effect between decisions without
// tearing a decision in progress.
type ConfigSource func() Config

// Option configures optional Service collaborators.
type Option func(*Service)

// WithReviewNotifier attaches a review notifier.
func WithReviewNotifier(n ReviewNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithAuditRecorder attaches a decision audit recorder.
func WithAuditRecorder(a AuditRecorder) Option {
	return func(s *Service) { s.audit = a }
}

// WithObservability attaches the otel meter wrapper.
func WithObservability(o *observability.Observability) Option {
	return func(s *Service) { s.obs = o }
}

// Service is the routing orchestrator: the only side-effecting entry point
// of the decision engine. It sequences normalize, eligibility, scoring and
// resolution, and holds the per-key lock around the quota-sensitive section.
type Service struct {
	config   ConfigSource
	ledger   quota.Ledger
	locks    *quota.KeyMutex
	store    ItemStore
	notifier ReviewNotifier
	audit    AuditRecorder
	obs      *observability.Observability
	logger   logger.Logger
}

// NewService builds the orchestrator.
func NewService(cfg ConfigSource, ledger quota.Ledger, store ItemStore, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		config: cfg,
		ledger: ledger,
		locks:  quota.NewKeyMutex(),
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "routing-service"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reroute recomputes the decision for an already-stored item.
func (s *Service) Reroute(ctx context.Context, itemID string) (*Decision, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		metrics.RoutingFailures.WithLabelValues(string(stderrors.CodeOf(err))).Inc()
		return nil, err
	}
	return s.Route(ctx, item)
}

// Route computes and persists the routing decision for one item. For
// quota-tracked tiers the snapshot-evaluate-reserve sequence runs under the
// fairness key's lock, so concurrent decisions on the same key serialize.
// Ledger errors fail closed: no decision is committed and the caller
// retries.
func (s *Service) Route(ctx context.Context, item *models.Item) (*Decision, error) {
	start := time.Now()
	cfg := s.config()
	log := s.logger.WithFields(map[string]interface{}{"itemId": item.ID})

	in, missing, err := Normalize(AttributesFromItem(item), cfg)
	if err != nil {
		log.WithError(err).Warn("item attributes rejected", nil)
		metrics.RoutingFailures.WithLabelValues(string(stderrors.CodeOf(err))).Inc()
		return nil, err
	}

	if len(missing) > 0 {
		// First-class outcome, not an error. Scoring, eligibility and the
		// quota ledger are never touched on this path; an existing
		// reservation stays as it was.
		d := &Decision{NeedsReview: true, MissingRequiredFields: missing}
		if err := s.store.SaveDecision(ctx, item.ID, d, item.QuotaKey, quota.Bucket(item.QuotaBucket)); err != nil {
			return nil, s.persistFailed(log, err)
		}
		s.finish(ctx, log, item, d, start)
		return d, nil
	}

	tracked := cfg.QuotaTracked(in.BrandTier)
	key := cfg.QuotaKey(in.BrandTier)

	// Release a previous reservation before deciding again, otherwise the
	// fairness ratio drifts over time. A reservation under a different key
	// (tier changed on edit) or on a no-longer-tracked tier is released in
	// its own critical section before the main one, so we never hold two
	// key locks at once. The released bucket is remembered so a persist
	// failure can restore it: until the new decision commits, the stored
	// row still owns that reservation.
	var releasedKey string
	var releasedBucket quota.Bucket
	if item.QuotaBucket != "" {
		prevKey := item.QuotaKey
		if prevKey == "" {
			prevKey = key
		}
		if !tracked || prevKey != key {
			unlock := s.locks.Lock(prevKey)
			err := s.ledger.Release(ctx, prevKey, quota.Bucket(item.QuotaBucket))
			unlock()
			if err != nil {
				return nil, s.ledgerFailed(log, err)
			}
			releasedKey, releasedBucket = prevKey, quota.Bucket(item.QuotaBucket)
			item.QuotaKey, item.QuotaBucket = "", ""
		}
	}

	var snap *quota.Snapshot
	var unlock func()
	if tracked {
		unlock = s.locks.Lock(key)
		if item.QuotaBucket != "" {
			if err := s.ledger.Release(ctx, key, quota.Bucket(item.QuotaBucket)); err != nil {
				unlock()
				return nil, s.ledgerFailed(log, err)
			}
			releasedKey, releasedBucket = key, quota.Bucket(item.QuotaBucket)
			item.QuotaKey, item.QuotaBucket = "", ""
		}
		sp, err := s.ledger.Snapshot(ctx, key)
		if err != nil {
			unlock()
			return nil, s.ledgerFailed(log, err)
		}
		snap = &sp
	}

	disqs := Evaluate(in, cfg, snap)
	scores := ScoreChannels(in)
	d := Resolve(scores, disqs)

	var bucket quota.Bucket
	reservedKey := ""
	if tracked && d.Primary != "" {
		bucket = quota.BucketOther
		if d.Primary == ChannelWhatnot {
			bucket = quota.BucketLimited
		}
		if err := s.ledger.Reserve(ctx, key, bucket); err != nil {
			unlock()
			return nil, s.ledgerFailed(log, err)
		}
		reservedKey = key
	}
	if unlock != nil {
		unlock()
	}

	if err := s.store.SaveDecision(ctx, item.ID, &d, reservedKey, bucket); err != nil {
		// Undo the reservation so an uncommitted decision does not count
		// against the ratio.
		if reservedKey != "" {
			relock := s.locks.Lock(reservedKey)
			if rerr := s.ledger.Release(ctx, reservedKey, bucket); rerr != nil {
				log.WithError(rerr).Error("failed to undo reservation after persist failure", nil)
			}
			relock()
		}
		// Restore the reservation this decision released: the stored row
		// still records it, and a retry will release it again. Without the
		// restore that second release would decrement a counter a committed
		// reservation owns.
		if releasedKey != "" {
			relock := s.locks.Lock(releasedKey)
			if rerr := s.ledger.Reserve(ctx, releasedKey, releasedBucket); rerr != nil {
				log.WithError(rerr).Error("failed to restore prior reservation after persist failure", nil)
			}
			relock()
			item.QuotaKey, item.QuotaBucket = releasedKey, string(releasedBucket)
		}
		return nil, s.persistFailed(log, err)
	}

	item.QuotaKey = reservedKey
	item.QuotaBucket = string(bucket)
	if reservedKey == "" {
		item.QuotaBucket = ""
	}
	item.PrimaryChannel = string(d.Primary)
	item.SecondaryChannel = string(d.Secondary)
	item.NeedsReview = d.NeedsReview
	now := time.Now().UTC()
	item.RoutedAt = &now

	if tracked && snap != nil && snap.Exhausted(cfg.HighValueBrandRatio) {
		metrics.RoutingQuotaRejections.WithLabelValues(key).Inc()
	}

	s.finish(ctx, log, item, &d, start)
	return &d, nil
}

func (s *Service) finish(ctx context.Context, log logger.Logger, item *models.Item, d *Decision, start time.Time) {
	primary := "none"
	if d.Primary != "" {
		primary = string(d.Primary)
	}
	metrics.RoutingDecisions.WithLabelValues(primary).Inc()
	for ch, reasons := range d.Disqualifications {
		if len(reasons) > 0 {
			metrics.RoutingDisqualifications.WithLabelValues(string(ch)).Inc()
		}
	}
	if d.NeedsReview {
		metrics.RoutingNeedsReview.Inc()
	}
	metrics.RoutingDuration.Observe(time.Since(start).Seconds())
	if s.obs != nil {
		status := "routed"
		if d.NeedsReview {
			status = "needs_review"
		}
		s.obs.RecordDecision(ctx, status)
		s.obs.RecordDecisionDuration(ctx, time.Since(start), status)
	}

	log.Info("routing decision committed", map[string]interface{}{
		"primary":     primary,
		"secondary":   string(d.Secondary),
		"needsReview": d.NeedsReview,
		"missing":     d.MissingRequiredFields,
	})

	if d.NeedsReview && s.notifier != nil {
		if err := s.notifier.NotifyReview(ctx, item, d); err != nil {
			log.WithError(err).Warn("review notification failed", nil)
		}
	}
	if s.audit != nil {
		// Best-effort; the audit index is a projection, never a gate.
		go func(itemID string, d Decision) {
			actx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.audit.RecordDecision(actx, itemID, &d); err != nil {
				s.logger.WithError(err).Warn("audit record failed", map[string]interface{}{"itemId": itemID})
			}
		}(item.ID, *d)
	}
}

func (s *Service) ledgerFailed(log logger.Logger, err error) error {
	log.WithError(err).Error("quota ledger unavailable, failing closed", nil)
	metrics.RoutingFailures.WithLabelValues(string(stderrors.CodeOf(err))).Inc()
	return err
}

func (s *Service) persistFailed(log logger.Logger, err error) error {
	log.WithError(err).Error("failed to persist routing decision", nil)
	perr := stderrors.NewDecisionPersistError(err)
	metrics.RoutingFailures.WithLabelValues(string(perr.Code)).Inc()
	return perr
}
