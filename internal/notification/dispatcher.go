package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull         = errors.New("notification queue full")
	ErrDispatcherStopped = errors.New("notification dispatcher stopped")
)

// Delivery is the outcome of one message. Err is nil when the sender accepted it.
type Delivery struct {
	Message Message
	Err     error
}

type Worker struct {
	ID         int
	WorkerPool chan chan Message
	JobChannel chan Message
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Message, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Message),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Message)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case msg := <-w.JobChannel:
				w.Logger.Debug("worker sending notification", "worker_id", w.ID, "template", msg.Template)
				processFunc(msg)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type DispatcherConfig struct {
	MaxWorkers int
	QueueSize  int
	// SendTimeout bounds a single Sender call.
	SendTimeout time.Duration
	// OnDelivery, when set, is called from the worker after every attempt.
	OnDelivery func(Delivery)
}

// Dispatcher queues messages and sends them from a fixed pool of workers.
// Shutdown stops intake and waits for queued messages to go out.
type Dispatcher struct {
	sender      Sender
	logger      *slog.Logger
	sendTimeout time.Duration
	onDelivery  func(Delivery)

	jobQueue   chan Message
	workerPool chan chan Message
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	dispatched chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender Sender, config DispatcherConfig, logger *slog.Logger) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	sendTimeout := config.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}

	d := &Dispatcher{
		sender:      sender,
		logger:      logger,
		sendTimeout: sendTimeout,
		onDelivery:  config.OnDelivery,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan Message, queueSize),
		workerPool: make(chan chan Message, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
		dispatched: make(chan struct{}),
	}

	for i := 0; i < d.maxWorkers; i++ {
		NewWorker(i, d.workerPool, d.logger).Start(d.ctx, &d.wg, d.process)
	}
	go d.dispatch()

	d.logger.Info("notification worker pool started",
		"max_workers", d.maxWorkers,
		"queue_size", cap(d.jobQueue))

	return d
}

func (d *Dispatcher) dispatch() {
	defer close(d.dispatched)

	for msg := range d.jobQueue {
		select {
		case jobChannel := <-d.workerPool:
			select {
			case jobChannel <- msg:
			case <-d.ctx.Done():
				return
			}
		case <-d.ctx.Done():
			d.logger.Warn("dispatcher stopped with messages pending", "pending", len(d.jobQueue)+1)
			return
		}
	}
}

// Enqueue hands m to the pool without blocking.
func (d *Dispatcher) Enqueue(m Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherStopped
	}

	select {
	case d.jobQueue <- m:
		return nil
	default:
		d.logger.Warn("notification queue full, dropping message",
			"template", m.Template,
			"channel", m.Channel,
			"queue_capacity", cap(d.jobQueue))
		return ErrQueueFull
	}
}

func (d *Dispatcher) process(m Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()

	err := Send(ctx, d.sender, m)
	if err != nil {
		d.logger.Error("notification delivery failed",
			"template", m.Template,
			"channel", m.Channel,
			"recipient", m.Recipient,
			"error", err)
	} else {
		d.logger.Info("notification delivered",
			"template", m.Template,
			"channel", m.Channel,
			"recipient", m.Recipient)
	}

	if d.onDelivery != nil {
		d.onDelivery(Delivery{Message: m, Err: err})
	}
}

// Shutdown stops intake and waits until queued messages are sent or ctx is
// done, whichever comes first.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobQueue)
	d.mu.Unlock()

	d.logger.Info("shutting down notification dispatcher")

	var err error
	select {
	case <-d.dispatched:
	case <-ctx.Done():
		err = ctx.Err()
	}

	d.cancel()
	d.wg.Wait()

	d.logger.Info("notification dispatcher shutdown complete")
	return err
}
