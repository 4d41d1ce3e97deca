package maintenance

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/clubarena/matchup/internal/services"
	"github.com/clubarena/matchup/pkg/logger"
)

const (
	defaultAuditRetentionDays        = 90
	defaultNotificationRetentionDays = 30
	defaultAuditSpec                 = "@daily"
	defaultNotificationSpec          = "@daily"
)

// Cleaner coordinates background maintenance: pruning stale audit logs and
// removing read notifications past their retention window.
type Cleaner struct {
	audit         *services.AuditService
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger

	auditRetention        int
	notificationRetention int
	auditSchedule         string
	notificationSchedule  string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for scheduling.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.auditRetention = days
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are kept.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = days
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit retention enforcement.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron specification for notification cleanup.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(audit *services.AuditService, notifications *services.NotificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		audit:                 audit,
		notifications:         notifications,
		now:                   time.Now,
		auditRetention:        defaultAuditRetentionDays,
		notificationRetention: defaultNotificationRetentionDays,
		auditSchedule:         defaultAuditSpec,
		notificationSchedule:  defaultNotificationSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one job is configured.
func (c *Cleaner) Start() error {
	if c.audit == nil && c.notifications == nil {
		return nil
	}

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.cron.AddFunc(c.auditSchedule, func() {
			if removed, err := c.audit.CleanupOlderThan(context.Background(), c.auditRetention); err != nil {
				c.log.Warn("audit cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("audit logs pruned", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			if removed, err := c.notifications.CleanupRead(context.Background(), c.notificationRetention); err != nil {
				c.log.Warn("notification cleanup failed", zap.Error(err))
			} else if removed > 0 {
				c.log.Info("read notifications pruned", zap.Int64("removed", removed))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.audit != nil && c.auditRetention > 0 {
		if _, err := c.audit.CleanupOlderThan(ctx, c.auditRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.notifications != nil && c.notificationRetention > 0 {
		if _, err := c.notifications.CleanupRead(ctx, c.notificationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
