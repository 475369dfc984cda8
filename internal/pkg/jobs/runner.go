package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"go.uber.org/zap"
)

// Runner executes named background jobs one instance at a time. A second
// enqueue of a job that is still running is rejected, so overlapping sweeps
// cannot race each other.
type Runner struct {
	logger  *zap.SugaredLogger
	timeout time.Duration

	mu      sync.Mutex
	running map[string]bool
}

// Ticket is returned to the caller so the job can be tracked on its
// progress channel.
type Ticket struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	TrackOn string `json:"track_on"`
}

func NewRunner(logger *zap.SugaredLogger, timeout time.Duration) *Runner {
	return &Runner{
		logger:  logger,
		timeout: timeout,
		running: map[string]bool{},
	}
}

func (r *Runner) Enqueue(name, trackOn string, fn func(ctx context.Context) error) (*Ticket, error) {
	r.mu.Lock()
	if r.running[name] {
		r.mu.Unlock()
		return nil, model.ErrAlreadyExists
	}
	r.running[name] = true
	r.mu.Unlock()

	id := uuid.NewString()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.running, name)
			r.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(ctx); err != nil {
			r.logger.Errorw("job failed", "job", name, "id", id, "err", err)
			return
		}
		r.logger.Infow("job finished", "job", name, "id", id, "duration", time.Since(start))
	}()

	return &Ticket{ID: id, Status: "queued", TrackOn: trackOn}, nil
}
