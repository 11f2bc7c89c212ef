// Package outbox turns the store's fire-and-forget remote writes into an
// explicit queue with a defined policy: best effort, log and drop on failure,
// no retry, never roll back local state.
package outbox

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/imoview/realty-crm/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes sync tasks to a fixed set of workers using consistent
// hashing on the record id, guaranteeing per-record write ordering. After the
// remote write lands, the change is published to the realtime channel so
// other replicas converge.
type Dispatcher struct {
	workers   []chan ports.SyncTask
	remote    ports.RemoteTable
	publisher ports.RealtimePublisher
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. publisher may be nil.
func NewDispatcher(numWorkers int, remote ports.RemoteTable, publisher ports.RealtimePublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.SyncTask, numWorkers),
		remote:    remote,
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SyncTask, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a task to the worker responsible for its record id. When the
// worker's buffer is full the task is dropped, not blocked on: a slow remote
// must never stall a local mutation.
func (d *Dispatcher) Enqueue(task ports.SyncTask) {
	ch := d.workers[d.shardIndex(task.ID)]
	select {
	case ch <- task:
	default:
		d.log.Warn().Str("table", task.Table).Str("id", task.ID).Msg("outbox full, task dropped")
	}
}

// shardIndex maps a record id deterministically to a worker index.
func (d *Dispatcher) shardIndex(id string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SyncTask) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-ch:
			if !ok {
				return
			}
			d.deliver(ctx, id, task)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, workerID int, task ports.SyncTask) {
	var err error
	switch task.Op {
	case ports.SyncDelete:
		err = d.remote.Delete(ctx, task.Table, task.ID)
	default:
		err = d.remote.Upsert(ctx, task.Table, task.Document)
	}
	if err != nil {
		d.log.Error().Err(err).
			Str("table", task.Table).
			Str("id", task.ID).
			Int("worker_id", workerID).
			Msg("remote sync failed, task dropped")
		return
	}

	if d.publisher == nil {
		return
	}
	evt := ports.ChangeEvent{Type: ports.ChangeUpdate, Table: task.Table, Document: task.Document}
	if task.Op == ports.SyncDelete {
		evt.Type = ports.ChangeDelete
		evt.Document = ports.Document{"id": task.ID}
	}
	if err := d.publisher.Publish(ctx, evt); err != nil {
		d.log.Warn().Err(err).Str("table", task.Table).Str("id", task.ID).Msg("realtime publish failed")
	}
}
