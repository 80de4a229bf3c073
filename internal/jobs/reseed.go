// File: internal/jobs/reseed.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/point"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReseedJob periodically resets the map point table to the demo dataset.
type ReseedJob struct {
	pointService  point.Service
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewReseedJob creates a new ReseedJob.
func NewReseedJob(
	pointService point.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *ReseedJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &ReseedJob{
		pointService:  pointService,
		logger:        logger.Named("ReseedJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *ReseedJob) SetupAndStart() error {
	jobSpec := j.cfg.ReseedJobSchedule // e.g., "@daily", "0 3 * * *"
	if jobSpec == "" {
		j.logger.Warn("Reseed job schedule not defined (RESEED_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule reseed job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Reseed job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job. It reseeds
// unconditionally: the demo environment is reset on every tick.
func (j *ReseedJob) runJob() {
	j.logger.Info("Starting reseed job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	count, err := j.pointService.Reseed(ctx)
	if err != nil {
		j.logger.Error("Reseed job run failed", zap.Error(err))
	} else {
		j.logger.Info("Reseed job run completed", zap.Int("points_seeded", count))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *ReseedJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping reseed job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Reseed job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Reseed job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
