// ©Ringbase Systems 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ringbuf

// Builder is a fluent constructor for ring buffers, mirroring the
// teacher's own producer/consumer-cardinality selection API.
type Builder struct {
	dataSize       int
	align          int
	singleProducer bool
	singleConsumer bool
}

// NewBuilder returns a Builder for a ring buffer whose backing region
// will have the given data size and alignment. The data size is not
// rounded: BuildSPSC/BuildMPMC pass it to Allocate, which returns
// ErrInvalidArgument unless it is a power of two of at least MinDataSize.
func NewBuilder(dataSize, align int) *Builder {
	return &Builder{dataSize: dataSize, align: align}
}

// SingleProducer declares that only one producer goroutine will ever
// call into the built ring buffer.
func (b *Builder) SingleProducer() *Builder {
	b.singleProducer = true
	return b
}

// SingleConsumer declares that only one consumer goroutine will ever
// call into the built ring buffer.
func (b *Builder) SingleConsumer() *Builder {
	b.singleConsumer = true
	return b
}

// BuildSPSC allocates a region and wraps it as an SPSCRingBuffer. Panics
// if the builder was not constrained to a single producer and a single
// consumer — construction-time misuse, not a runtime contention signal.
func (b *Builder) BuildSPSC() (*SPSCRingBuffer, error) {
	if !b.singleProducer || !b.singleConsumer {
		panic("ringbuf: BuildSPSC requires SingleProducer() and SingleConsumer()")
	}
	region, err := Allocate(b.dataSize, b.align)
	if err != nil {
		return nil, err
	}
	return NewSPSCRingBuffer(region), nil
}

// BuildMPMC allocates a region and wraps it as an MPMCRingBuffer. Panics
// if the builder carries either single-producer or single-consumer
// constraints — those belong to BuildSPSC.
func (b *Builder) BuildMPMC() (*MPMCRingBuffer, error) {
	if b.singleProducer || b.singleConsumer {
		panic("ringbuf: BuildMPMC requires no constraints")
	}
	region, err := Allocate(b.dataSize, b.align)
	if err != nil {
		return nil, err
	}
	return NewMPMCRingBuffer(region), nil
}
