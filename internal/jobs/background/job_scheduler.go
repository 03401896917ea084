package background

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"trainhub/internal/caching"
	"trainhub/internal/models"
	"trainhub/internal/repositories"
)

// JobScheduler manages recurring maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	companies repositories.CompanyRepository
	incidents repositories.IncidentRepository
	cache     caching.CacheService
	logger    *zap.Logger
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler(
	companies repositories.CompanyRepository,
	incidents repositories.IncidentRepository,
	cache caching.CacheService,
	logger *zap.Logger,
) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		companies: companies,
		incidents: incidents,
		cache:     cache,
		logger:    logger,
		jobs:      make(map[string]gocron.Job),
	}
	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler", zap.Int("jobs", len(js.jobs)))
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Trial expiry sweep - hourly
	trialJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredTrials, context.Background()),
		gocron.WithName("trial-expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		js.logger.Error("failed to create trial expiry job", zap.Error(err))
	} else {
		js.jobs["trial-expiry"] = trialJob
	}

	// Unresolved incident report - every 6 hours
	incidentJob, err := js.scheduler.NewJob(
		gocron.DurationJob(6*time.Hour),
		gocron.NewTask(js.reportUnresolvedIncidents, context.Background()),
		gocron.WithName("incident-report"),
	)
	if err != nil {
		js.logger.Error("failed to create incident report job", zap.Error(err))
	} else {
		js.jobs["incident-report"] = incidentJob
	}
}

// sweepExpiredTrials deactivates brands whose trial window has lapsed. The
// brand record survives; login simply finds a deactivated tenant.
func (js *JobScheduler) sweepExpiredTrials(ctx context.Context) error {
	cutoff := time.Now().UTC().Format(time.RFC3339)
	expired, err := js.companies.ListTrialsEndingBefore(ctx, cutoff)
	if err != nil {
		js.logger.Error("trial sweep query failed", zap.Error(err))
		return err
	}

	for _, company := range expired {
		if err := js.companies.SoftDelete(ctx, company.ID); err != nil {
			js.logger.Error("failed to expire trial brand",
				zap.String("company_id", company.ID.String()), zap.Error(err))
			continue
		}
		if err := js.cache.DeleteCompany(ctx, company.ID); err != nil {
			js.logger.Warn("failed to invalidate expired brand cache",
				zap.String("company_id", company.ID.String()), zap.Error(err))
		}
		js.logger.Info("trial brand expired",
			zap.String("company_id", company.ID.String()),
			zap.String("name", company.Name))
	}

	if len(expired) > 0 {
		js.logger.Info("trial expiry sweep completed", zap.Int("expired", len(expired)))
	}
	return nil
}

// reportUnresolvedIncidents surfaces provisioning incidents that still need
// an operator. The log line is what paging keys off.
func (js *JobScheduler) reportUnresolvedIncidents(ctx context.Context) error {
	incidents, err := js.incidents.ListUnresolved(ctx, 100)
	if err != nil {
		js.logger.Error("incident report query failed", zap.Error(err))
		return err
	}
	if len(incidents) == 0 {
		return nil
	}

	var reconcile, orphans int
	for _, inc := range incidents {
		switch inc.Kind {
		case models.IncidentReconcilePayment:
			reconcile++
		case models.IncidentCompensationFailed:
			orphans++
		}
	}
	js.logger.Warn("unresolved provisioning incidents outstanding",
		zap.Int("total", len(incidents)),
		zap.Int("payment_reconciliations", reconcile),
		zap.Int("possible_orphans", orphans))
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}
	js.jobs[name] = job
	return nil
}

// JobNames returns the names of registered jobs
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return names
}
