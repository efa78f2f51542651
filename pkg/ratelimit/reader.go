package ratelimit

import (
	"context"
	"io"
	"sync"
	"time"
)

// Limiter controls the rate of data read across multiple readers using a
// token bucket. A nil *Limiter means no limiting and is safe to pass
// around.
type Limiter struct {
	bytesPerSecond int64
	mu             sync.Mutex
	tokens         int64
	lastUpdate     time.Time
	bucketSize     int64
}

// NewLimiter creates a rate limiter with the specified bytes-per-second
// budget. The bucket allows bursts of one second worth of data, with a
// 64KB floor so small reads stay smooth.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	bucketSize := bytesPerSecond
	if bucketSize < 65536 {
		bucketSize = 65536
	}

	return &Limiter{
		bytesPerSecond: bytesPerSecond,
		tokens:         bucketSize,
		lastUpdate:     time.Now(),
		bucketSize:     bucketSize,
	}
}

func (l *Limiter) refillTokens() {
	now := time.Now()
	elapsed := now.Sub(l.lastUpdate)
	l.lastUpdate = now

	refill := int64(elapsed.Seconds() * float64(l.bytesPerSecond))
	l.tokens += refill
	if l.tokens > l.bucketSize {
		l.tokens = l.bucketSize
	}
}

// waitForTokens blocks until at least needed tokens are available
func (l *Limiter) waitForTokens(needed int64) {
	for {
		l.mu.Lock()
		l.refillTokens()
		if l.tokens >= needed {
			l.mu.Unlock()
			return
		}
		missing := needed - l.tokens
		l.mu.Unlock()

		wait := time.Duration(float64(missing) / float64(l.bytesPerSecond) * float64(time.Second))
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		time.Sleep(wait)
	}
}

func (l *Limiter) consumeTokens(n int64) {
	l.mu.Lock()
	l.tokens -= n
	l.mu.Unlock()
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps an io.Reader with rate limiting. A nil limiter returns
// the reader unchanged.
func NewReader(ctx context.Context, reader io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return reader
	}
	return &Reader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

// Read implements io.Reader with token bucket pacing
func (r *Reader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	toRead := len(p)
	if int64(toRead) > r.limiter.bucketSize {
		toRead = int(r.limiter.bucketSize)
	}

	r.limiter.waitForTokens(int64(toRead))

	n, err := r.reader.Read(p[:toRead])
	if n > 0 {
		r.limiter.consumeTokens(int64(n))
	}

	return n, err
}

// ReadCloser pairs a rate-limited reader with the original closer
type ReadCloser struct {
	io.Reader
	closer io.Closer
}

// NewReadCloser wraps an io.ReadCloser with rate limiting
func NewReadCloser(ctx context.Context, rc io.ReadCloser, limiter *Limiter) io.ReadCloser {
	if limiter == nil {
		return rc
	}
	return &ReadCloser{
		Reader: NewReader(ctx, rc, limiter),
		closer: rc,
	}
}

// Close closes the underlying reader
func (r *ReadCloser) Close() error {
	return r.closer.Close()
}
