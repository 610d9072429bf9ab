package enhancer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Omarhersan/todoApp/internal/metrics"
)

// StatusStore is the slice of the todo store the worker mutates: exactly one
// terminal status write per task, guarded so a terminal row is never reset.
type StatusStore interface {
	SaveEnhancement(ctx context.Context, id uint, enhancedTitle string, steps []string) (int64, error)
	MarkEnhancementFailed(ctx context.Context, id uint) (int64, error)
}

// Task is one queued enhancement.
type Task struct {
	TodoID    uint
	Title     string
	RequestID string
}

// Worker runs enhancements in the background. Dispatch never blocks the
// request that created the todo; the response is sent while the todo is still
// pending and clients poll for the terminal transition.
type Worker struct {
	queue   chan Task
	service *Service
	store   StatusStore
	logger  *slog.Logger
	timeout time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	// mu orders Dispatch sends against Stop closing the queue. Dispatchers
	// hold it shared, so only Stop ever waits on it.
	mu       sync.RWMutex
	stopping atomic.Bool
	done     chan struct{}
}

// NewWorker creates a worker with a bounded queue.
func NewWorker(service *Service, store StatusStore, queueSize int, timeout time.Duration, logger *slog.Logger) *Worker {
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:   make(chan Task, queueSize),
		service: service,
		store:   store,
		logger:  logger,
		timeout: timeout,
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		go w.run()
	})
}

// Dispatch enqueues an enhancement for a just-created todo. Non-blocking:
// when the queue is full the task is dropped and the todo stays pending,
// which is logged for operator visibility.
func (w *Worker) Dispatch(todoID uint, title string) {
	task := Task{TodoID: todoID, Title: title, RequestID: uuid.New().String()}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopping.Load() {
		metrics.EnhancementsDropped.WithLabelValues("shutdown").Inc()
		w.logger.Error("enhancement dispatched during shutdown, task dropped",
			"todo_id", todoID,
			"request_id", task.RequestID)
		return
	}
	select {
	case w.queue <- task:
	default:
		metrics.EnhancementsDropped.WithLabelValues("queue_full").Inc()
		w.logger.Error("enhancement queue full, task dropped",
			"todo_id", todoID,
			"request_id", task.RequestID)
	}
}

// Stop closes the queue and waits for the worker to finish the task in
// flight. Remaining queued tasks are abandoned but counted and logged, so
// losing them on shutdown is observable rather than silent.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.stopping.Store(true)
		close(w.queue)
		w.mu.Unlock()
		<-w.done
	})
}

func (w *Worker) run() {
	defer close(w.done)
	for task := range w.queue {
		if w.stopping.Load() {
			abandoned := 1 + len(w.queue)
			for range w.queue {
			}
			metrics.EnhancementsDropped.WithLabelValues("shutdown").Add(float64(abandoned))
			w.logger.Error("enhancement tasks abandoned at shutdown", "count", abandoned)
			return
		}
		w.process(task)
	}
}

// storeWriteTimeout bounds the terminal status writes. The writes run on
// their own context: a provider that stalls to the enhancement deadline still
// yields a fallback result, and that result must reach the store.
const storeWriteTimeout = 10 * time.Second

// process runs one task to completion regardless of client disconnection.
func (w *Worker) process(task Task) {
	enhCtx, cancelEnh := context.WithTimeout(context.Background(), w.timeout)
	enh := w.service.Enhance(enhCtx, task.Title)
	cancelEnh()

	ctx, cancel := context.WithTimeout(context.Background(), storeWriteTimeout)
	defer cancel()

	matched, err := w.store.SaveEnhancement(ctx, task.TodoID, enh.EnhancedTitle, enh.Steps)
	if err == nil {
		if matched == 0 {
			// Row deleted or already terminal; nothing to do.
			w.logger.Debug("enhancement write matched no pending row",
				"todo_id", task.TodoID,
				"request_id", task.RequestID)
			return
		}
		metrics.EnhancementsCompleted.WithLabelValues("done").Inc()
		w.logger.Info("enhancement completed",
			"todo_id", task.TodoID,
			"request_id", task.RequestID)
		return
	}

	w.logger.Warn("enhancement write failed, marking todo failed",
		"todo_id", task.TodoID,
		"request_id", task.RequestID,
		"error", err)

	if _, err := w.store.MarkEnhancementFailed(ctx, task.TodoID); err != nil {
		metrics.EnhancementsStuck.Inc()
		w.logger.Error("failed-status write also failed, todo left pending",
			"todo_id", task.TodoID,
			"request_id", task.RequestID,
			"error", err)
		return
	}
	metrics.EnhancementsCompleted.WithLabelValues("failed").Inc()
}
