package transfers

import (
	"log"
	"sync"
)

const (
	// NumTransferRequests is the number of USB transfer requests kept in
	// flight on the streaming endpoint. libuvc uses 100 by default, but Go's
	// goroutines handle scheduling better, so 8 is a reasonable middle ground.
	NumTransferRequests = 8

	// numInitialBuffers is allocated up front so steady-state streaming never
	// hits the allocator; maxBuffers caps growth when the worker falls behind.
	numInitialBuffers = 1600
	maxBuffers        = 3000
)

// PacketDescriptor locates one transport packet inside a PoolBuffer. A
// negative Offset marks a packet the host controller reported as errored;
// the worker skips it without touching Data.
type PacketDescriptor struct {
	Offset int
	Length int
}

// PoolBuffer carries the packets of one completed transfer request from the
// collector to the capture worker.
type PoolBuffer struct {
	Data    []byte
	Packets []PacketDescriptor
}

// Transport is one reusable in-flight USB transfer request. Submit queues it
// with the kernel; Harvest blocks until completion and snapshots the received
// packets into pb so the request can be requeued immediately.
type Transport interface {
	Submit() error
	Harvest(pb *PoolBuffer) error
	Cancel()
}

// TransferPool owns the streaming endpoint's transfer requests and the buffer
// lists that decouple USB completion from payload demultiplexing. A single
// collector goroutine services the requests in submission order, so buffers
// appear on the full list in wire order.
type TransferPool struct {
	transports []Transport
	bufSize    int

	mu          sync.Mutex
	free        []*PoolBuffer
	full        []*PoolBuffer
	allocated   int
	terminating bool
	freeCond    *sync.Cond
	fullCond    *sync.Cond

	wg sync.WaitGroup
}

func NewTransferPool(transports []Transport, bufSize int) *TransferPool {
	p := &TransferPool{
		transports: transports,
		bufSize:    bufSize,
		free:       make([]*PoolBuffer, 0, numInitialBuffers),
	}
	p.freeCond = sync.NewCond(&p.mu)
	p.fullCond = sync.NewCond(&p.mu)
	for i := 0; i < numInitialBuffers; i++ {
		p.free = append(p.free, &PoolBuffer{Data: make([]byte, bufSize)})
	}
	p.allocated = numInitialBuffers
	return p
}

// Start submits every transfer request and launches the collector.
func (p *TransferPool) Start() error {
	for i, t := range p.transports {
		if err := t.Submit(); err != nil {
			for j := 0; j < i; j++ {
				p.transports[j].Cancel()
			}
			return err
		}
	}
	p.wg.Add(1)
	go p.collect()
	return nil
}

// collect harvests completed transfers round-robin and resubmits each one as
// soon as its packets are copied out.
func (p *TransferPool) collect() {
	defer p.wg.Done()
	for i := 0; ; i = (i + 1) % len(p.transports) {
		t := p.transports[i]
		buf := p.acquire()
		if buf == nil {
			return
		}
		if err := t.Harvest(buf); err != nil {
			p.release(buf)
			if p.isTerminating() {
				return
			}
			log.Printf("transfer harvest failed: %v", err)
			if err := t.Submit(); err != nil {
				log.Printf("transfer resubmit failed, endpoint stalled: %v", err)
				return
			}
			continue
		}
		if err := t.Submit(); err != nil {
			p.release(buf)
			log.Printf("transfer resubmit failed, endpoint stalled: %v", err)
			return
		}
		p.mu.Lock()
		p.full = append(p.full, buf)
		p.fullCond.Signal()
		p.mu.Unlock()
	}
}

// acquire returns a free buffer, growing the pool up to maxBuffers. It blocks
// when the worker holds every buffer, and returns nil on termination.
func (p *TransferPool) acquire() *PoolBuffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.terminating {
			return nil
		}
		if n := len(p.free); n > 0 {
			buf := p.free[n-1]
			p.free = p.free[:n-1]
			return buf
		}
		if p.allocated < maxBuffers {
			p.allocated++
			return &PoolBuffer{Data: make([]byte, p.bufSize)}
		}
		p.freeCond.Wait()
	}
}

func (p *TransferPool) release(buf *PoolBuffer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	buf.Packets = buf.Packets[:0]
	p.free = append(p.free, buf)
	p.freeCond.Signal()
}

// PopFull blocks for the next completed buffer in wire order. The second
// return is false once the pool is terminating and drained.
func (p *TransferPool) PopFull() (*PoolBuffer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.full) == 0 && !p.terminating {
		p.fullCond.Wait()
	}
	if len(p.full) == 0 {
		return nil, false
	}
	buf := p.full[0]
	p.full = p.full[1:]
	return buf, true
}

// Recycle returns a processed buffer to the free list.
func (p *TransferPool) Recycle(buf *PoolBuffer) {
	p.release(buf)
}

// Backlog returns the number of completed buffers the worker has not yet
// consumed.
func (p *TransferPool) Backlog() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.full)
}

func (p *TransferPool) isTerminating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.terminating
}

// Close cancels all transfer requests, unblocks the collector and any
// PopFull caller, and waits for the collector to exit.
func (p *TransferPool) Close() error {
	p.mu.Lock()
	if p.terminating {
		p.mu.Unlock()
		return nil
	}
	p.terminating = true
	p.freeCond.Broadcast()
	p.fullCond.Broadcast()
	p.mu.Unlock()

	for _, t := range p.transports {
		t.Cancel()
	}
	p.wg.Wait()
	// The collector may have resubmitted a request after the first cancel
	// sweep; reap any straggler before the caller releases the interface.
	for _, t := range p.transports {
		t.Cancel()
	}
	return nil
}
