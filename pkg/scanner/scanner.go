// Package scanner drives a camera-based code scanner for redemption
// front-ends (kiosk or POS builds). It owns the exclusive camera
// handle across mode switches, debounces the code stream a held-up
// QR code produces, and forwards at most one redemption attempt at a
// time. Manually typed codes go through the same forwarding path.
package scanner

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/morningrun/perkpass-core/internal/app/pkg"
)

// State of the adapter's camera lifecycle.
type State string

const (
	StateIdle             State = "IDLE"
	StateAcquiring        State = "ACQUIRING"
	StateScanning         State = "SCANNING"
	StatePermissionDenied State = "PERMISSION_DENIED"
)

var (
	// ErrNoCode is returned by decoders when a frame contains no
	// readable code. Expected continuously while scanning.
	ErrNoCode = errors.New("scanner: no code in frame")

	// ErrPermissionDenied is returned by devices when camera access
	// is refused. The adapter degrades to manual entry.
	ErrPermissionDenied = errors.New("scanner: camera permission denied")
)

// Frame is one captured camera frame.
type Frame []byte

// Stream is an open camera handle. Frames is closed when the handle
// is released.
type Stream interface {
	Frames() <-chan Frame
	Close() error
}

// Device is the exclusive camera resource.
type Device interface {
	Open(ctx context.Context) (Stream, error)
}

// Decoder extracts a code payload from a frame.
type Decoder interface {
	Decode(frame Frame) (string, error)
}

// RedeemFunc forwards one redemption attempt to the backend.
type RedeemFunc func(code string) error

// Result is the outcome of one forwarded redemption attempt.
type Result struct {
	Code string
	Err  error
}

// DefaultQuietPeriod is how long a repeat of the same code is
// suppressed. A QR code held in front of a camera decodes dozens of
// times per second.
const DefaultQuietPeriod = 2500 * time.Millisecond

// Adapter is the scan input state machine. At most one camera handle
// is open at any time, and at most one redemption attempt is in
// flight, no matter how input arrives.
type Adapter struct {
	device  Device
	decoder Decoder
	redeem  RedeemFunc

	// QuietPeriod overrides DefaultQuietPeriod when set before use.
	QuietPeriod time.Duration

	// OnResult, when set, receives the outcome of every forwarded
	// attempt originating from camera frames.
	OnResult func(Result)

	mu          sync.Mutex
	state       State
	stream      Stream
	inFlight    bool
	lastCode    string
	lastForward time.Time

	// now is swapped in tests.
	now func() time.Time
}

func NewAdapter(device Device, decoder Decoder, redeem RedeemFunc) *Adapter {
	return &Adapter{
		device:      device,
		decoder:     decoder,
		redeem:      redeem,
		QuietPeriod: DefaultQuietPeriod,
		state:       StateIdle,
		now:         time.Now,
	}
}

func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// StartScanning acquires the camera and begins decoding frames. Any
// previously held handle is released first; rapid mode switches never
// stack handles.
func (a *Adapter) StartScanning(ctx context.Context) error {
	a.mu.Lock()
	a.releaseLocked()
	a.state = StateAcquiring
	a.mu.Unlock()

	stream, err := a.device.Open(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			a.state = StatePermissionDenied
		} else {
			a.state = StateIdle
		}
		return err
	}

	// A concurrent stop while Open was in flight wins; give the
	// handle straight back.
	if a.state != StateAcquiring {
		stream.Close()
		return nil
	}

	a.stream = stream
	a.state = StateScanning

	go a.readLoop(stream)
	return nil
}

// StopScanning releases the camera and returns to Idle. Safe to call
// from any state and on every exit path.
func (a *Adapter) StopScanning() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked()
	a.state = StateIdle
}

// Close tears the adapter down, releasing the camera if held.
func (a *Adapter) Close() {
	a.StopScanning()
}

// releaseLocked closes the current handle. Callers hold a.mu.
func (a *Adapter) releaseLocked() {
	if a.stream != nil {
		a.stream.Close()
		a.stream = nil
	}
}

// readLoop decodes frames until the stream's handle is released.
func (a *Adapter) readLoop(stream Stream) {
	for frame := range stream.Frames() {
		a.handleFrame(frame)
	}
}

// handleFrame partitions decode outcomes: no code visible is ignored,
// hardware failures drop to manual entry, anything else is a
// candidate for forwarding.
func (a *Adapter) handleFrame(frame Frame) {
	payload, err := a.decoder.Decode(frame)
	if err != nil {
		if errors.Is(err, ErrNoCode) {
			return
		}
		a.mu.Lock()
		a.releaseLocked()
		a.state = StatePermissionDenied
		a.mu.Unlock()
		return
	}
	if payload == "" {
		return
	}

	forwarded, err := a.SubmitCode(payload)
	if forwarded && a.OnResult != nil {
		a.OnResult(Result{Code: pkg.NormalizeClaimCode(payload), Err: err})
	}
}

// SubmitCode forwards one redemption attempt for the code, applying
// the debounce and single-flight rules. Typed input and camera
// decodes share this path. The returned bool reports whether the
// attempt was forwarded; the error is the backend's answer when it
// was.
func (a *Adapter) SubmitCode(code string) (bool, error) {
	normalized := pkg.NormalizeClaimCode(code)
	if normalized == "" {
		return false, nil
	}

	a.mu.Lock()
	if a.inFlight {
		a.mu.Unlock()
		return false, nil
	}

	now := a.now()
	if normalized == a.lastCode && now.Sub(a.lastForward) < a.QuietPeriod {
		a.mu.Unlock()
		return false, nil
	}

	a.inFlight = true
	a.lastCode = normalized
	a.lastForward = now
	a.mu.Unlock()

	// Backend failures surface to the operator and clear the
	// in-flight flag; adapter state is otherwise untouched so the
	// operator can retry.
	err := a.redeem(normalized)

	a.mu.Lock()
	a.inFlight = false
	a.mu.Unlock()

	return true, err
}
