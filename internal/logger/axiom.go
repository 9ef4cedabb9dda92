package logger

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/axiomhq/axiom-go/axiom"
	"github.com/axiomhq/axiom-go/axiom/ingest"
	"github.com/rs/zerolog"
)

const (
	shipQueue     = 1000
	shipBatch     = 200
	ingestTimeout = 15 * time.Second
)

// eventSink is the part of *axiom.Client the shipper needs.
type eventSink interface {
	IngestEvents(ctx context.Context, id string, events []axiom.Event, options ...ingest.Option) (*ingest.Status, error)
}

// shipper batches events to a dataset in the background. Events that do not
// fit the queue are counted and dropped so logging never blocks a conversion.
type shipper struct {
	sink    eventSink
	dataset string
	queue   chan axiom.Event
	stop    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
}

func newShipper(sink eventSink, dataset string, flushEvery time.Duration) *shipper {
	if dataset == "" {
		dataset = "dev_" + serviceName
	}
	if flushEvery <= 0 {
		flushEvery = 10 * time.Second
	}
	s := &shipper{
		sink:    sink,
		dataset: dataset,
		queue:   make(chan axiom.Event, shipQueue),
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run(flushEvery)
	return s
}

func (s *shipper) enqueue(ev axiom.Event) {
	select {
	case <-s.stop:
		s.dropped.Add(1)
		return
	default:
	}
	select {
	case s.queue <- ev:
	default:
		s.dropped.Add(1)
	}
}

func (s *shipper) run(flushEvery time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]axiom.Event, 0, shipBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		if _, err := s.sink.IngestEvents(ctx, s.dataset, batch); err != nil {
			s.dropped.Add(int64(len(batch)))
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case ev := <-s.queue:
			batch = append(batch, ev)
			if len(batch) >= shipBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stop:
			for {
				select {
				case ev := <-s.queue:
					batch = append(batch, ev)
					if len(batch) >= shipBatch {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Close ships what is queued and returns how many events were lost overall.
func (s *shipper) Close() int64 {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	return s.dropped.Load()
}

// axiomWriter turns zerolog JSON lines into Axiom events at or above min.
type axiomWriter struct {
	ship *shipper
	min  zerolog.Level
}

func (w *axiomWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

func (w *axiomWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l != zerolog.NoLevel && l < w.min {
		return len(p), nil
	}
	ev := axiom.Event{}
	if err := json.Unmarshal(p, &ev); err != nil {
		ev = axiom.Event{zerolog.MessageFieldName: string(p), zerolog.LevelFieldName: l.String()}
	}
	ev["service"] = serviceName
	if _, ok := ev[ingest.TimestampField]; !ok {
		ev[ingest.TimestampField] = time.Now()
	}
	w.ship.enqueue(ev)
	return len(p), nil
}
