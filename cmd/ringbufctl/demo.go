// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ringbase.dev/ringbuf"
	"go.ringbase.dev/ringbuf/internal/slotqueue"
)

var demoOpts struct {
	capacity int
	records  int
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run one producer and one consumer over an SPSC ring buffer",
	RunE:  runDemo,
}

func init() {
	flags := demoCmd.Flags()
	flags.IntVar(&demoOpts.capacity, "capacity", 4096, "backing region data size in bytes (power of two)")
	flags.IntVar(&demoOpts.records, "records", 10, "number of records to produce and consume")
}

// CorrelationRequest is the bookkeeping record handed from the ring
// buffer's poll callback to the printer goroutine below: the callback
// only has microseconds of a shared buffer view, but logging can take
// arbitrarily long, so the record is copied out into a queue instead of
// printed in place.
type CorrelationRequest struct {
	CorrelationID uint64
	TypeID        int32
}

func runDemo(_ *cobra.Command, _ []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	region, err := ringbuf.Allocate(demoOpts.capacity, 64)
	if err != nil {
		return fmt.Errorf("allocate region: %w", err)
	}
	rb := ringbuf.NewSPSCRingBuffer(region)
	requests := slotqueue.NewSPSC[CorrelationRequest](64)

	produced := make(chan struct{})
	go func() {
		defer close(produced)
		payload := make([]byte, 8)
		for i := 0; i < demoOpts.records; i++ {
			correlation := rb.NextCorrelation()
			binary.NativeEndian.PutUint64(payload, correlation)
			for {
				ok, offerErr := rb.Offer(1, payload, 0, len(payload))
				if offerErr != nil && !ringbuf.IsInsufficientSpace(offerErr) {
					logger.Error("offer failed", zap.Error(offerErr))
					return
				}
				if ok {
					break
				}
				time.Sleep(time.Millisecond)
			}
			rb.MarkHeartbeatNow()
		}
	}()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for i := 0; i < demoOpts.records; i++ {
			var req CorrelationRequest
			for {
				r, dequeueErr := requests.Dequeue()
				if dequeueErr == nil {
					req = r
					break
				}
				time.Sleep(time.Millisecond)
			}
			logger.Info("record delivered",
				zap.Int32("type_id", req.TypeID),
				zap.Uint64("correlation", req.CorrelationID),
			)
		}
	}()

	seen := 0
	for seen < demoOpts.records {
		n := rb.Poll(func(typeID int32, view *ringbuf.ReadView) {
			correlation, _ := view.GetLong(0)
			req := CorrelationRequest{CorrelationID: uint64(correlation), TypeID: typeID}
			for requests.Enqueue(&req) != nil {
			}
			seen++
		}, demoOpts.records-seen)
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	<-produced
	<-printed
	logger.Info("demo complete", zap.Int("records", seen), zap.Uint64("heartbeat", rb.ReadHeartbeat()))
	return nil
}
