package queue

import (
	"encoding/json"
	"time"

	"bookquote-backend/internal/config"
	"bookquote-backend/internal/domains/importer/job"
	"bookquote-backend/internal/shared"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	return s.registerPruneArtifactsJob()
}

// Prune import audit artifacts past their retention window. Cron comes
// from JOBS_PRUNE_ARTIFACTS_CRON, default daily at 3 AM UTC.
func (s *Scheduler) registerPruneArtifactsJob() error {
	payload, err := json.Marshal(job.PruneArtifactsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePruneImportArtifacts, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.PruneArtifactsCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(1),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register PruneArtifacts job")
		return err
	}

	log.Info().Str("cron", s.jobConfig.PruneArtifactsCron).Msg("Registered PruneArtifacts job")
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
