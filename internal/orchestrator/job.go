package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"
)

// statusBuffer bounds how far a slow consumer may lag behind the worker
// before updates are dropped.
const statusBuffer = 64

// Job is a conversion running in the background.
type Job struct {
	updates chan Status
	done    chan struct{}
	result  Result
}

// Updates streams progress. The channel is closed when the job finishes.
// Updates that would block a full buffer are dropped, except the last one.
func (j *Job) Updates() <-chan Status { return j.updates }

// Done is closed once the result is available.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finishes and returns its result.
func (j *Job) Wait() Result {
	<-j.done
	return j.result
}

// Start runs Convert on a worker goroutine. Only one job may run at a time;
// a second Start before the first finishes returns ErrBusy.
func (o *Orchestrator) Start(ctx context.Context, req Request) (*Job, error) {
	o.mu.Lock()
	if o.job != nil {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	j := &Job{
		updates: make(chan Status, statusBuffer),
		done:    make(chan struct{}),
	}
	o.job = j
	o.mu.Unlock()

	go func() {
		var (
			last    Status
			dropped bool
		)
		res := o.Convert(ctx, req, func(st Status) {
			last = st
			select {
			case j.updates <- st:
				dropped = false
			default:
				dropped = true
				log.Debug().Str("status", st.String()).Msg("status update dropped; consumer is behind")
			}
		})

		o.mu.Lock()
		o.job = nil
		o.mu.Unlock()

		j.result = res
		close(j.done)
		if dropped {
			j.deliverLast(last)
		}
		close(j.updates)
	}()
	return j, nil
}

// deliverLast makes sure the final status reaches a consumer that drains
// Updates, evicting the oldest queued update if the buffer is full.
func (j *Job) deliverLast(last Status) {
	for {
		select {
		case j.updates <- last:
			return
		default:
		}
		select {
		case <-j.updates:
		default:
		}
	}
}

// Running reports whether a job is in flight.
func (o *Orchestrator) Running() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.job != nil
}
