// Package service drives a portal pair across two goroutines: one
// producer reading from an input channel, one consumer writing to an
// output channel, wired together with logging and metrics.
package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zoxc-go/portal"
)

// Service wraps a portal pair with observability: a backpressure
// counter and per-direction occupancy gauges.
type Service struct {
	logger *zap.SugaredLogger

	backpressure prometheus.Counter
	occupancy    *prometheus.GaugeVec
}

// New builds a Service backed by logger and registered against
// registry (typically prometheus.DefaultRegisterer).
func New(logger *zap.Logger, registry prometheus.Registerer) (*Service, error) {
	backpressure := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portal",
		Name:      "write_backpressure_total",
		Help:      "Number of Write calls that observed a full ring and had to yield.",
	})
	occupancy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "portal",
		Name:      "ring_occupancy",
		Help:      "Most recently observed write_count - read_count for a direction.",
	}, []string{"direction"})

	for _, c := range []prometheus.Collector{backpressure, occupancy} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("register portal metrics: %w", err)
		}
	}

	return &Service{
		logger:       logger.Sugar(),
		backpressure: backpressure,
		occupancy:    occupancy,
	}, nil
}

// RunProducer drains in, batching each message into ep via Write and
// flushing every batch messages (or when in is closed / ctx is done),
// the bridge between an ordinary Go channel and the portal's batched
// publish model.
func (s *Service) RunProducer(ctx context.Context, ep *portal.Endpoint, in <-chan portal.Message, batch int) error {
	var backpressure atomic.Uint64
	defer func() { s.backpressure.Add(float64(backpressure.Load())) }()

	pending := 0
	for {
		select {
		case <-ctx.Done():
			ep.Notify()
			return ctx.Err()
		case m, ok := <-in:
			if !ok {
				ep.Notify()
				return nil
			}
			ep.Write(m, &backpressure)
			pending++
			if pending >= batch {
				ep.Notify()
				s.logger.Debugw("portal producer flushed batch", "batch_size", pending)
				pending = 0
			}
		}
	}
}

// RunConsumer blocks on ep.Wait, drains whatever Pending returns onto
// out, and commits with Read, until ctx is cancelled.
func (s *Service) RunConsumer(ctx context.Context, ep *portal.Endpoint, out chan<- portal.Message, direction string) error {
	for {
		if err := ep.Wait(ctx); err != nil {
			return err
		}

		s.occupancy.WithLabelValues(direction).Set(float64(ep.Occupancy()))

		pending := ep.Pending()
		for _, m := range pending {
			select {
			case out <- m:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		ep.Read(uint64(len(pending)))
	}
}

// RunPair launches one producer over pair.Endpoint(0) fed by in, and
// one consumer over pair.Endpoint(1) feeding out. The producer stops
// when in is closed or ctx is cancelled; the consumer stops only when
// ctx is cancelled (or on an error), so RunPair returns once ctx is
// done.
func (s *Service) RunPair(ctx context.Context, pair *portal.Pair, in <-chan portal.Message, out chan<- portal.Message, batch int) error {
	g, ctx := errgroup.WithContext(ctx)

	producer := pair.Endpoint(0)
	consumer := pair.Endpoint(1)

	g.Go(func() error {
		return s.RunProducer(ctx, producer, in, batch)
	})
	g.Go(func() error {
		return s.RunConsumer(ctx, consumer, out, "a_to_b")
	})

	return g.Wait()
}
