package jobs

import (
	"github.com/ailubes/veterans-orden-sub001/internal/config"
	"github.com/ailubes/veterans-orden-sub001/internal/logger"
	"github.com/ailubes/veterans-orden-sub001/internal/repository"
	"github.com/ailubes/veterans-orden-sub001/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	queueRepo repository.RecheckQueueRepository
	statsSvc  service.StatsService
	advSvc    service.AdvancementService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(queueRepo repository.RecheckQueueRepository, statsSvc service.StatsService, advSvc service.AdvancementService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		queueRepo: queueRepo,
		statsSvc:  statsSvc,
		advSvc:    advSvc,
		config:    cfg,
	}
}

// Config returns the runner's configuration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}
