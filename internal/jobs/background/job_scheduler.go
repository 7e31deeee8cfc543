package background

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"licensewatch/internal/jobs"
	"licensewatch/internal/services"
)

const (
	expiryScanJob       = "expiry-scan"
	dashboardRefreshJob = "dashboard-refresh"
)

// Schedule holds the job intervals. A zero interval disables that job.
type Schedule struct {
	ExpiryScanInterval     time.Duration
	ExpiryAlertDays        int
	DashboardRefreshPeriod time.Duration
	Location               *time.Location
}

// JobScheduler runs the periodic expiry scan and dashboard refresh
type JobScheduler struct {
	scheduler    gocron.Scheduler
	alerts       *jobs.ExpiryAlertService
	dashboardSvc services.DashboardService
	schedule     Schedule
	ctx          context.Context
	cancel       context.CancelFunc
	jobs         map[string]gocron.Job
	mu           sync.RWMutex
}

func NewJobScheduler(alerts *jobs.ExpiryAlertService, dashboardSvc services.DashboardService, schedule Schedule) (*JobScheduler, error) {
	var opts []gocron.SchedulerOption
	if schedule.Location != nil {
		opts = append(opts, gocron.WithLocation(schedule.Location))
	}
	scheduler, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		scheduler:    scheduler,
		alerts:       alerts,
		dashboardSvc: dashboardSvc,
		schedule:     schedule,
		ctx:          ctx,
		cancel:       cancel,
		jobs:         make(map[string]gocron.Job),
	}

	if err := js.registerJobs(); err != nil {
		cancel()
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	logrus.WithField("jobs", js.JobNames()).Info("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running tasks and waits for them to return
func (js *JobScheduler) Stop() error {
	logrus.Info("Stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	if js.schedule.ExpiryScanInterval > 0 {
		if err := js.addJob(expiryScanJob, js.schedule.ExpiryScanInterval, js.scanExpiring); err != nil {
			return err
		}
	}
	if js.schedule.DashboardRefreshPeriod > 0 {
		if err := js.addJob(dashboardRefreshJob, js.schedule.DashboardRefreshPeriod, js.refreshDashboard); err != nil {
			return err
		}
	}

	logrus.Infof("Registered %d background jobs", len(js.jobs))
	return nil
}

func (js *JobScheduler) addJob(name string, interval time.Duration, task func() error) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logrus.WithError(err).WithField("job", name).Error("Failed to create job")
		return err
	}

	js.jobs[name] = job
	return nil
}

func (js *JobScheduler) scanExpiring() error {
	if err := js.alerts.ScheduledExpiryCheck(js.ctx, js.schedule.ExpiryAlertDays); err != nil {
		logrus.WithError(err).Error("Scheduled expiry scan failed")
		return err
	}
	return nil
}

func (js *JobScheduler) refreshDashboard() error {
	summary, err := js.dashboardSvc.Refresh(js.ctx)
	if err != nil {
		logrus.WithError(err).Error("Scheduled dashboard refresh failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"licenses": summary.TotalLicenses,
		"expired":  summary.Expired,
	}).Debug("Dashboard summary refreshed")
	return nil
}

// JobNames lists the registered jobs in name order
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
