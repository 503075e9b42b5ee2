// Package job runs background work on Asynq, a Redis-backed task queue.
//
// The API process enqueues tasks through JobService.Client; the same
// process runs the asynq.Server that executes them.
package job

import (
	"github.com/deppfellow/menu-api/internal/config"
	"github.com/deppfellow/menu-api/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// mailer is the part of email.Client the task handlers use.
type mailer interface {
	SendItemStatusEmail(to string, itemID int64, itemName, action string) error
}

// JobService owns the Asynq client and worker server.
type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	logger *zerolog.Logger
	mailer mailer
}

// NewJobService connects to the Redis instance from cfg.
//
// Workers are split across queues by weight: critical 6, default 3, low 1.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	return &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		logger: logger,
	}
}

// InitHandlers builds the dependencies task handlers need.
func (j *JobService) InitHandlers(cfg *config.Config, logger *zerolog.Logger) {
	j.mailer = email.NewClient(cfg, logger)
}

// Start registers the task handlers and starts the workers in the
// background.
func (j *JobService) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskItemStatus, j.handleItemStatusTask)

	j.logger.Info().Msg("starting background job server")

	return j.server.Start(mux)
}

// Stop waits for running tasks and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}
