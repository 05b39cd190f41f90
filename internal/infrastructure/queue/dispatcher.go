package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/auth-core/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Publisher delivers one activity event to its final destination.
type Publisher interface {
	Publish(ctx context.Context, event domain.ActivityEvent) error
}

// Hooks observe the dispatcher. Nil fields are skipped.
type Hooks struct {
	// Depth receives a worker's pending count after every enqueue and dequeue.
	Depth func(worker, pending int)
	// Dropped is called once per event rejected on a full queue.
	Dropped func()
	// PublishFailed is called once per event the publisher returned an error for.
	PublishFailed func()
}

func (h Hooks) depth(worker, pending int) {
	if h.Depth != nil {
		h.Depth(worker, pending)
	}
}

func (h Hooks) dropped() {
	if h.Dropped != nil {
		h.Dropped()
	}
}

func (h Hooks) publishFailed() {
	if h.PublishFailed != nil {
		h.PublishFailed()
	}
}

// Dispatcher routes activity events to a fixed set of workers using
// consistent hashing on the event's shard key, so one account's events are
// published in order. Record never blocks: when a worker queue is full the
// event is dropped and counted.
type Dispatcher struct {
	workers   []chan domain.ActivityEvent
	publisher Publisher
	log       zerolog.Logger
	hooks     Hooks

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to buffer events. Non-positive values fall back to defaults.
func NewDispatcher(numWorkers, buffer int, publisher Publisher, hooks Hooks, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &Dispatcher{
		workers:   make([]chan domain.ActivityEvent, numWorkers),
		publisher: publisher,
		log:       log,
		hooks:     hooks,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, buffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and exit
// after Stop; cancelling ctx aborts in-flight publishes.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an event for the worker that owns its shard key.
func (d *Dispatcher) Record(_ context.Context, event domain.ActivityEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return
	}

	idx := d.shardIndex(event.ShardKey())
	select {
	case d.workers[idx] <- event:
		d.hooks.depth(idx, len(d.workers[idx]))
	default:
		d.hooks.dropped()
		d.log.Warn().
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("activity queue full, event dropped")
	}
}

// Stop closes every worker queue and waits for pending events to be
// published. Later Record calls are ignored.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	defer d.wg.Done()
	for event := range ch {
		d.hooks.depth(id, len(ch))
		if ctx.Err() != nil {
			continue
		}
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := d.publisher.Publish(pubCtx, event)
		cancel()
		if err != nil {
			d.hooks.publishFailed()
			d.log.Error().Err(err).
				Str("type", string(event.Type)).
				Int("worker_id", id).
				Msg("activity publish failed")
		}
	}
}
