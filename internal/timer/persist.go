package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// PersistTimeout bounds a single completion write.
const PersistTimeout = 10 * time.Second

// Completer records the outcome of a focus session on its task.
type Completer interface {
	CompleteFocusSession(ctx context.Context, taskID string, actualMinutes float64, at time.Time) error
}

// Persister writes exactly one completion per finished edge of a Timer.
// Writes run in the background; failures are logged and the timer keeps
// its finished state.
type Persister struct {
	timer     *Timer
	completer Completer
	now       func() time.Time
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewPersister creates a Persister. Call Attach to start listening.
func NewPersister(t *Timer, c Completer, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{
		timer:     t,
		completer: c,
		now:       time.Now,
		logger:    logger,
	}
}

// Attach subscribes to the timer. The returned func detaches.
func (p *Persister) Attach() (detach func()) {
	return p.timer.Subscribe(p.handle)
}

// Wait blocks until in-flight writes are done.
func (p *Persister) Wait() {
	p.wg.Wait()
}

func (p *Persister) handle(tr Transition) {
	if !tr.Completed() || tr.Next.TaskID == "" {
		return
	}
	taskID := tr.Next.TaskID
	minutes := float64(tr.Next.ElapsedMinutes())
	at := p.now()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), PersistTimeout)
		defer cancel()
		if err := p.completer.CompleteFocusSession(ctx, taskID, minutes, at); err != nil {
			p.logger.Error("persist timer result failed",
				"task_id", taskID,
				"actual_minutes", minutes,
				"error", err,
			)
			return
		}
		p.logger.Debug("focus session persisted", "task_id", taskID, "actual_minutes", minutes)
	}()
}
