package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeClock drives the adapter's debounce window deterministically.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

// fakeStream counts open handles on its parent device.
type fakeStream struct {
	device *fakeDevice
	frames chan Frame
	closed sync.Once
}

func (s *fakeStream) Frames() <-chan Frame { return s.frames }

func (s *fakeStream) Close() error {
	s.closed.Do(func() {
		atomic.AddInt32(&s.device.open, -1)
		close(s.frames)
	})
	return nil
}

// fakeDevice tracks how many handles are open at once.
type fakeDevice struct {
	open    int32
	maxOpen int32
	openErr error
}

func (d *fakeDevice) Open(ctx context.Context) (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	n := atomic.AddInt32(&d.open, 1)
	for {
		max := atomic.LoadInt32(&d.maxOpen)
		if n <= max || atomic.CompareAndSwapInt32(&d.maxOpen, max, n) {
			break
		}
	}
	return &fakeStream{device: d, frames: make(chan Frame, 64)}, nil
}

// passthroughDecoder treats every frame as its own payload.
type passthroughDecoder struct{}

func (passthroughDecoder) Decode(frame Frame) (string, error) {
	if len(frame) == 0 {
		return "", ErrNoCode
	}
	return string(frame), nil
}

func newTestAdapter(redeem RedeemFunc) (*Adapter, *fakeClock) {
	clock := newFakeClock()
	a := NewAdapter(&fakeDevice{}, passthroughDecoder{}, redeem)
	a.now = clock.now
	return a, clock
}

func TestDebounceSuppressesRepeatedCode(t *testing.T) {
	var forwards int32
	a, clock := newTestAdapter(func(code string) error {
		atomic.AddInt32(&forwards, 1)
		return nil
	})

	// Same code decoded 50 times within 200ms: one forward.
	for i := 0; i < 50; i++ {
		a.SubmitCode("X7Q2AB9C")
		clock.advance(4 * time.Millisecond)
	}
	if got := atomic.LoadInt32(&forwards); got != 1 {
		t.Fatalf("forwarded %d attempts within burst, want 1", got)
	}

	// Same code after a 4s gap: a second forward.
	clock.advance(4 * time.Second)
	forwarded, err := a.SubmitCode("X7Q2AB9C")
	if err != nil {
		t.Fatalf("SubmitCode() error = %v", err)
	}
	if !forwarded {
		t.Fatal("SubmitCode() after quiet period not forwarded")
	}
	if got := atomic.LoadInt32(&forwards); got != 2 {
		t.Fatalf("forwarded %d attempts total, want 2", got)
	}
}

func TestDifferentCodeForwardsImmediately(t *testing.T) {
	var forwards int32
	a, _ := newTestAdapter(func(code string) error {
		atomic.AddInt32(&forwards, 1)
		return nil
	})

	a.SubmitCode("AAAA2222")
	a.SubmitCode("BBBB3333")
	if got := atomic.LoadInt32(&forwards); got != 2 {
		t.Fatalf("forwarded %d attempts, want 2", got)
	}
}

func TestSingleFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var startedOnce sync.Once
	a, clock := newTestAdapter(func(code string) error {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	})

	done := make(chan struct{})
	go func() {
		a.SubmitCode("AAAA2222")
		close(done)
	}()

	<-started
	// While the first attempt is in flight, even a different code
	// past the debounce window must not be forwarded.
	clock.advance(10 * time.Second)
	forwarded, _ := a.SubmitCode("BBBB3333")
	if forwarded {
		t.Fatal("second attempt forwarded while first still in flight")
	}

	close(release)
	<-done

	forwarded, _ = a.SubmitCode("BBBB3333")
	if !forwarded {
		t.Fatal("attempt not forwarded after in-flight cleared")
	}
}

func TestBackendFailureClearsInFlightOnly(t *testing.T) {
	calls := 0
	a, clock := newTestAdapter(func(code string) error {
		calls++
		return context.DeadlineExceeded
	})

	forwarded, err := a.SubmitCode("AAAA2222")
	if !forwarded || err == nil {
		t.Fatalf("SubmitCode() = (%v, %v), want forwarded with error", forwarded, err)
	}

	// Immediate retry of the same code is still debounced.
	if forwarded, _ := a.SubmitCode("AAAA2222"); forwarded {
		t.Fatal("failed code re-forwarded inside quiet period")
	}

	// A different code goes straight through.
	if forwarded, _ := a.SubmitCode("BBBB3333"); !forwarded {
		t.Fatal("different code not forwarded after backend failure")
	}

	// The same code retries once the quiet period has passed.
	clock.advance(5 * time.Second)
	if forwarded, _ := a.SubmitCode("AAAA2222"); !forwarded {
		t.Fatal("same code not forwarded after quiet period")
	}

	if calls != 3 {
		t.Fatalf("backend called %d times, want 3", calls)
	}
}

func TestModeSwitchesNeverStackHandles(t *testing.T) {
	device := &fakeDevice{}
	a := NewAdapter(device, passthroughDecoder{}, func(string) error { return nil })

	for i := 0; i < 10; i++ {
		if err := a.StartScanning(context.Background()); err != nil {
			t.Fatalf("StartScanning() error = %v", err)
		}
		if a.State() != StateScanning {
			t.Fatalf("state = %s, want %s", a.State(), StateScanning)
		}
		a.StopScanning()
	}

	if max := atomic.LoadInt32(&device.maxOpen); max > 1 {
		t.Fatalf("max concurrent handles = %d, want at most 1", max)
	}
	if open := atomic.LoadInt32(&device.open); open != 0 {
		t.Fatalf("handles still open after teardown = %d, want 0", open)
	}
	if a.State() != StateIdle {
		t.Fatalf("state after teardown = %s, want %s", a.State(), StateIdle)
	}
}

func TestRestartWithoutStopReleasesPreviousHandle(t *testing.T) {
	device := &fakeDevice{}
	a := NewAdapter(device, passthroughDecoder{}, func(string) error { return nil })

	for i := 0; i < 5; i++ {
		if err := a.StartScanning(context.Background()); err != nil {
			t.Fatalf("StartScanning() error = %v", err)
		}
	}

	if max := atomic.LoadInt32(&device.maxOpen); max > 1 {
		t.Fatalf("max concurrent handles = %d, want at most 1", max)
	}

	a.Close()
	if open := atomic.LoadInt32(&device.open); open != 0 {
		t.Fatalf("handles still open after close = %d, want 0", open)
	}
}

func TestPermissionDeniedFallsBackToManual(t *testing.T) {
	device := &fakeDevice{openErr: ErrPermissionDenied}
	var forwards int32
	a := NewAdapter(device, passthroughDecoder{}, func(string) error {
		atomic.AddInt32(&forwards, 1)
		return nil
	})

	err := a.StartScanning(context.Background())
	if err == nil {
		t.Fatal("StartScanning() error = nil, want permission error")
	}
	if a.State() != StatePermissionDenied {
		t.Fatalf("state = %s, want %s", a.State(), StatePermissionDenied)
	}

	// Manual entry still works through the same path.
	forwarded, err := a.SubmitCode("AAAA2222")
	if err != nil || !forwarded {
		t.Fatalf("SubmitCode() = (%v, %v), want forwarded without error", forwarded, err)
	}
	if got := atomic.LoadInt32(&forwards); got != 1 {
		t.Fatalf("forwarded %d attempts, want 1", got)
	}
}

func TestFrameDecodingForwardsThroughSharedPath(t *testing.T) {
	device := &fakeDevice{}
	var mu sync.Mutex
	var results []Result

	a := NewAdapter(device, passthroughDecoder{}, func(string) error { return nil })
	a.OnResult = func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, r)
	}

	if err := a.StartScanning(context.Background()); err != nil {
		t.Fatalf("StartScanning() error = %v", err)
	}

	a.mu.Lock()
	stream := a.stream.(*fakeStream)
	a.mu.Unlock()

	stream.frames <- Frame("x7q2ab9c")
	stream.frames <- Frame(nil) // no code visible, ignored

	deadline := time.After(time.Second)
	for {
		mu.Lock()
		n := len(results)
		mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("no result delivered for decoded frame")
		case <-time.After(time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if results[0].Code != "X7Q2AB9C" {
		t.Fatalf("result code = %q, want %q", results[0].Code, "X7Q2AB9C")
	}
	if results[0].Err != nil {
		t.Fatalf("result error = %v, want nil", results[0].Err)
	}

	a.Close()
}

func TestHardwareDecodeFailureReleasesCamera(t *testing.T) {
	device := &fakeDevice{}
	a := NewAdapter(device, failingDecoder{}, func(string) error { return nil })

	if err := a.StartScanning(context.Background()); err != nil {
		t.Fatalf("StartScanning() error = %v", err)
	}

	a.mu.Lock()
	stream := a.stream.(*fakeStream)
	a.mu.Unlock()

	stream.frames <- Frame("anything")

	deadline := time.After(time.Second)
	for a.State() != StatePermissionDenied {
		select {
		case <-deadline:
			t.Fatalf("state = %s, want %s", a.State(), StatePermissionDenied)
		case <-time.After(time.Millisecond):
		}
	}

	if open := atomic.LoadInt32(&device.open); open != 0 {
		t.Fatalf("handles still open after hardware failure = %d, want 0", open)
	}
}

type failingDecoder struct{}

func (failingDecoder) Decode(Frame) (string, error) {
	return "", ErrPermissionDenied
}
