// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ringbase.dev/ringbuf"
	"go.ringbase.dev/ringbuf/internal/fixedpoint"
	"go.ringbase.dev/ringbuf/internal/slotqueue"
	"go.ringbase.dev/ringbuf/internal/strbuf"
)

var benchOpts struct {
	mode       string
	capacity   int
	producers  int
	consumers  int
	duration   time.Duration
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Drive a ring buffer under concurrent load and report throughput",
	RunE:  runBench,
}

func init() {
	flags := benchCmd.Flags()
	flags.StringVar(&benchOpts.mode, "mode", "spsc", "ring buffer variant: spsc or mpmc")
	flags.IntVar(&benchOpts.capacity, "capacity", 1<<20, "backing region data size in bytes (power of two)")
	flags.IntVar(&benchOpts.producers, "producers", 1, "number of producer goroutines")
	flags.IntVar(&benchOpts.consumers, "consumers", 1, "number of consumer goroutines")
	flags.DurationVar(&benchOpts.duration, "duration", 2*time.Second, "how long to run")
}

// latencySample is the unit of work ferried from the consumers' poll
// callbacks to the aggregator goroutine through a slotqueue.
type latencySample struct {
	nanos int64
}

func runBench(_ *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	switch benchOpts.mode {
	case "spsc":
		return runSPSCBench(logger)
	case "mpmc":
		return runMPMCBench(logger)
	default:
		return fmt.Errorf("unknown mode %q (want spsc or mpmc)", benchOpts.mode)
	}
}

func runSPSCBench(logger *zap.Logger) error {
	if benchOpts.producers != 1 || benchOpts.consumers != 1 {
		return fmt.Errorf("mode=spsc requires exactly one producer and one consumer")
	}
	region, err := ringbuf.Allocate(benchOpts.capacity, 64)
	if err != nil {
		return fmt.Errorf("allocate region: %w", err)
	}
	rb := ringbuf.NewSPSCRingBuffer(region)

	var produced, consumed atomic.Int64
	samples := slotqueue.NewSPSC[latencySample](4096)
	stop := make(chan struct{})

	go func() {
		payload := make([]byte, 8)
		for {
			select {
			case <-stop:
				return
			default:
			}
			binary.NativeEndian.PutUint64(payload, uint64(timecache.DefaultCache().CachedTime().UnixNano()))
			if ok, _ := rb.Offer(1, payload, 0, len(payload)); ok {
				produced.Add(1)
				rb.MarkHeartbeatNow()
			}
		}
	}()

	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			rb.Poll(func(_ int32, view *ringbuf.ReadView) {
				sentAt, _ := view.GetLong(0)
				now := timecache.DefaultCache().CachedTime().UnixNano()
				sample := latencySample{nanos: now - sentAt}
				for samples.Enqueue(&sample) != nil {
				}
				consumed.Add(1)
			}, 256)
		}
	}()

	summary := runAggregatorAndWait(logger, samples, stop, rb)
	ringbuf.ReportMetrics(rb, "spsc")
	logger.Info("spsc bench complete",
		zap.Int64("produced", produced.Load()),
		zap.Int64("consumed", consumed.Load()),
		zap.String("summary", summary),
		zap.Uint64("correlation_counter", rb.ReadCorrelationCount()),
	)
	return nil
}

func runMPMCBench(logger *zap.Logger) error {
	region, err := ringbuf.Allocate(benchOpts.capacity, 64)
	if err != nil {
		return fmt.Errorf("allocate region: %w", err)
	}
	rb := ringbuf.NewMPMCRingBuffer(region)

	var produced, consumed atomic.Int64
	samples := slotqueue.NewMPSC[latencySample](4096)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for range benchOpts.producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := make([]byte, 8)
			typeID := int32(rb.NextCorrelation()%1000 + 1)
			for {
				select {
				case <-stop:
					return
				default:
				}
				binary.NativeEndian.PutUint64(payload, uint64(timecache.DefaultCache().CachedTime().UnixNano()))
				if ok, _ := rb.Offer(typeID, payload, 0, len(payload)); ok {
					produced.Add(1)
				}
			}
		}()
	}

	for range benchOpts.consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				rb.Poll(func(_ int32, view *ringbuf.ReadView) {
					sentAt, _ := view.GetLong(0)
					now := timecache.DefaultCache().CachedTime().UnixNano()
					sample := latencySample{nanos: now - sentAt}
					for samples.Enqueue(&sample) != nil {
					}
					consumed.Add(1)
				}, 256)
			}
		}()
	}

	summary := runAggregatorAndWait(logger, samples, stop, rb)
	wg.Wait()
	ringbuf.ReportMetrics(rb, "mpmc")
	logger.Info("mpmc bench complete",
		zap.Int64("produced", produced.Load()),
		zap.Int64("consumed", consumed.Load()),
		zap.String("summary", summary),
	)
	return nil
}

type latencySource interface {
	Dequeue() (latencySample, error)
}

type observableRing interface {
	Utilization() int
}

// runAggregatorAndWait drains latency samples into a running fixed-point
// average for the bench duration, then signals every producer/consumer
// goroutine to stop via close(stop) and returns one rendered summary
// line.
func runAggregatorAndWait(logger *zap.Logger, samples latencySource, stop chan struct{}, rb observableRing) string {
	deadline := time.Now().Add(benchOpts.duration)
	var sum fixedpoint.Q32
	var count int64

	for time.Now().Before(deadline) {
		s, err := samples.Dequeue()
		if err != nil {
			continue
		}
		sum = sum.Add(fixedpoint.FromNanos(s.nanos))
		count++
	}
	close(stop)

	var avg fixedpoint.Q32
	if count > 0 {
		avg = sum.Div(count)
	}

	var line strbuf.Builder
	line.WriteString("avg_latency_ns=").WriteInt(avg.Nanos()).
		WriteString(" samples=").WriteInt(count).
		WriteString(" utilization=").WriteInt(int64(rb.Utilization()))

	logger.Debug("bench tick", zap.String("line", line.String()))
	return line.String()
}
