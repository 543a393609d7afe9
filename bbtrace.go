// Package bbtrace replays recorded basic-block execution traces through a
// bounded FIFO block cache and reports how much code reuse the cache caught.
package bbtrace

import (
	"io"

	"github.com/facebookgo/stackerr"
	"github.com/rcrowley/go-metrics"

	"github.com/skipor/bbtrace/cache"
	"github.com/skipor/bbtrace/log"
	"github.com/skipor/bbtrace/trace"
)

// Discipline selects how the cache state is protected from concurrent
// block events.
type Discipline string

const (
	// DisciplineExclusive guards one shared cache with a mutex:
	// correct for any source, serializes all threads' events.
	DisciplineExclusive Discipline = "exclusive"
	// DisciplinePartitioned keeps an independent cache per thread id and
	// sums counters only at exit-notification read time.
	DisciplinePartitioned Discipline = "partitioned"
)

type Config struct {
	Cache      cache.Config
	Discipline Discipline // Empty means DisciplineExclusive.
	// Metrics, if non-nil, receives a live block throughput meter
	// and the final counter values.
	Metrics metrics.Registry
}

// Session owns one replay: a cache built per the configured discipline,
// subscribed to block events, read once after the exit notification.
type Session struct {
	Log   log.Logger
	hooks *Broker
	stats cache.Stats
}

func NewSession(l log.Logger, conf Config) (*Session, error) {
	s := &Session{
		Log:   l,
		hooks: NewBroker(),
	}
	switch conf.Discipline {
	case "", DisciplineExclusive:
		c, err := cache.New(l, conf.Cache)
		if err != nil {
			return nil, err
		}
		locked := cache.NewLocked(c)
		s.stats = locked
		s.hooks.RegisterBlock(func(ev trace.Event) {
			locked.Observe(ev.Block)
		})
	case DisciplinePartitioned:
		p, err := cache.NewPartitioned(l, conf.Cache)
		if err != nil {
			return nil, err
		}
		s.stats = p
		s.hooks.RegisterBlock(func(ev trace.Event) {
			p.Shard(ev.TID).Observe(ev.Block)
		})
	default:
		return nil, stackerr.Newf("unknown discipline %q", conf.Discipline)
	}
	if conf.Metrics != nil {
		meter := metrics.GetOrRegisterMeter("trace.blocks", conf.Metrics)
		s.hooks.RegisterBlock(func(trace.Event) { meter.Mark(1) })
	}
	return s, nil
}

// Hooks exposes the broker for extra subscribers.
// All hooks must be registered before Run.
func (s *Session) Hooks() *Broker { return s.hooks }

// Stats is the exit-time read boundary. Valid once Run has returned.
func (s *Session) Stats() cache.Stats { return s.stats }

// Run drains src, emitting one block event per trace event, and fires the
// exit notification after the last one. On a read error no exit notification
// is emitted: a broken trace must not produce partial results.
func (s *Session) Run(src *trace.Reader) error {
	for {
		ev, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		s.hooks.EmitBlock(ev)
	}
	s.Log.Debug("Trace drained, firing exit hooks.")
	s.hooks.EmitExit()
	return nil
}
