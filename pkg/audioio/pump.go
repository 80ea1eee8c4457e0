package audioio

import (
	"context"
	"io"
	"sync"
)

// backlog is how many captured chunks may wait for a slow reader.
const backlog = 8

// captureFunc produces the next chunk, blocking for roughly one buffer.
type captureFunc func(ctx context.Context) (Chunk, error)

// pump runs a captureFunc on its own goroutine and queues the chunks for
// Read. Both backends share it.
type pump struct {
	mu     sync.Mutex
	closed bool
	cancel context.CancelFunc
	done   chan struct{}
	chunks chan Chunk
	err    error
}

// start launches capture unless it is already running. It reports whether a
// new capture goroutine was started.
func (p *pump) start(parent context.Context, capture captureFunc) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false, io.ErrClosedPipe
	}
	if p.cancel != nil {
		select {
		case <-p.done:
			// Capture ended on its own; allow a restart.
			p.cancel()
		default:
			return false, nil
		}
	}

	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.chunks = make(chan Chunk, backlog)
	p.err = nil

	go p.run(ctx, capture, p.chunks, p.done)
	return true, nil
}

func (p *pump) run(ctx context.Context, capture captureFunc, out chan<- Chunk, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	for ctx.Err() == nil {
		chunk, err := capture(ctx)
		if err != nil {
			if ctx.Err() == nil {
				p.fail(err)
			}
			return
		}
		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}
}

func (p *pump) fail(err error) {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
}

func (p *pump) read(ctx context.Context) (Chunk, error) {
	p.mu.Lock()
	chunks := p.chunks
	p.mu.Unlock()
	if chunks == nil {
		return Chunk{}, io.EOF
	}

	select {
	case <-ctx.Done():
		return Chunk{}, ctx.Err()
	case chunk, ok := <-chunks:
		if ok {
			return chunk, nil
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return Chunk{}, p.err
	}
	return Chunk{}, io.EOF
}

// stop cancels capture and waits for the goroutine to exit. It reports
// whether capture was running.
func (p *pump) stop() bool {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done
	return true
}

// close stops capture permanently. It reports false if already closed.
func (p *pump) close() bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.closed = true
	p.mu.Unlock()

	p.stop()
	return true
}

func (p *pump) running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
