// internal/cli/listen/listen.go
// Package listen turns a stream of detection blocks into debounced
// key-press events.
package listen

import (
	"context"
	"errors"

	"github.com/eippbx/phoneDTMF/internal/dtmf"
)

var (
	// ErrInvalidDebounce indicates debounce must be at least one block
	ErrInvalidDebounce = errors.New("debounce must be at least 1 block")
)

// Classifier is the slice of the detection engine the listener needs.
type Classifier interface {
	Detect(magnitudes []float32, threshold float32) (uint8, error)
}

// Options configures a Listener.
type Options struct {
	// Threshold is passed through to every Detect call; negative
	// selects the engine's automatic threshold.
	Threshold float32
	// Debounce is the number of consecutive blocks that must agree
	// before a symbol change is accepted. Doubles as a guard against
	// blocks that straddle the edge of a button push.
	Debounce int
}

// KeyCallback receives each accepted key press exactly once.
type KeyCallback func(ch byte)

// Listener runs detection blocks back to back and reports a key press
// on the block where the debounced symbol changes to a mapped
// character. Releasing the button (debounced silence) re-arms the
// listener for the next press, so a held key fires once.
type Listener struct {
	classifier Classifier
	opts       Options

	last   byte // symbol of the most recent block
	streak int  // consecutive blocks that produced last
	active byte // currently accepted (debounced) symbol
}

// New creates a Listener. Debounce defaults to 2 blocks when zero.
func New(c Classifier, opts Options) (*Listener, error) {
	if opts.Debounce == 0 {
		opts.Debounce = 2
	}
	if opts.Debounce < 0 {
		return nil, ErrInvalidDebounce
	}
	return &Listener{classifier: c, opts: opts}, nil
}

// Run blocks, classifying until ctx is cancelled or detection fails.
// Accepted key presses are delivered to cb from the calling goroutine.
func (l *Listener) Run(ctx context.Context, cb KeyCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		mask, err := l.classifier.Detect(nil, l.opts.Threshold)
		if err != nil {
			return err
		}
		if ch, pressed := l.observe(dtmf.ToneToChar(mask)); pressed {
			cb(ch)
		}
	}
}

// observe feeds one block's symbol through the debouncer. It returns
// a key and true on the block where a new non-empty symbol becomes
// stable.
func (l *Listener) observe(ch byte) (byte, bool) {
	if ch == l.last {
		l.streak++
	} else {
		l.last = ch
		l.streak = 1
	}
	if l.streak < l.opts.Debounce || ch == l.active {
		return 0, false
	}
	l.active = ch
	if ch == dtmf.NoSymbol {
		return 0, false
	}
	return ch, true
}
