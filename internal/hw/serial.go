// internal/hw/serial.go
package hw

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"go.bug.st/serial"

	"github.com/eippbx/phoneDTMF/internal/dtmf"
	"github.com/eippbx/phoneDTMF/internal/recovery"
)

const (
	// DefaultBaudRate matches the firmware's UART configuration. At 10
	// wire bits per byte and 5 bytes per reading line this carries
	// ~9200 readings/sec, comfortably above the 6000 Hz default target
	// rate.
	DefaultBaudRate = 460800
)

var (
	// ErrNotConnected indicates the serial port has not been opened
	ErrNotConnected = errors.New("serial sampler not connected")
	// ErrAlreadyConnected indicates Connect was called twice
	ErrAlreadyConnected = errors.New("serial sampler already connected")
)

// SerialSampler reads an analog line through a serial-attached
// microcontroller. The firmware (see firmware/) samples its ADC as
// fast as it can and streams one unsigned decimal reading per line.
//
// Read blocks until a fresh reading arrives, so the engine's rate
// measurements see the true arrival rate of the stream rather than
// the speed of a memory load. When the engine falls behind, stale
// readings are discarded and Read returns the newest one, the same
// value a direct analogRead would have produced at that moment.
//
// The pin argument of Read is ignored: the remote MCU samples the pin
// it was flashed for.
type SerialSampler struct {
	port     string
	baudRate int

	conn      serial.Port
	readings  chan int
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

var _ dtmf.Sampler = (*SerialSampler)(nil)

// NewSerialSampler creates a sampler for the given serial port.
// baudRate 0 selects DefaultBaudRate.
func NewSerialSampler(port string, baudRate int) *SerialSampler {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &SerialSampler{
		port:     port,
		baudRate: baudRate,
		readings: make(chan int, 1),
	}
}

// Ports returns the names of the serial ports available on this host.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the port and starts the background reader.
func (s *SerialSampler) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return ErrAlreadyConnected
	}

	conn, err := serial.Open(s.port, &serial.Mode{BaudRate: s.baudRate})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.port, err)
	}
	s.attach(conn)
	return nil
}

// attach wires an open port into the sampler. Callers hold s.mu.
func (s *SerialSampler) attach(conn serial.Port) {
	s.conn = conn
	s.connected = true

	// A reading left over from a previous session must not leak into
	// this one.
	select {
	case <-s.readings:
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.readLoop(ctx)
}

// Close stops the reader and releases the port.
func (s *SerialSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return ErrNotConnected
	}
	s.cancel()
	err := s.conn.Close()
	<-s.done
	s.connected = false
	if err != nil {
		return fmt.Errorf("close serial port %s: %w", s.port, err)
	}
	return nil
}

// Read blocks until the MCU delivers a reading and returns it. Before
// Connect, and once the reader has shut down, it reports zero.
func (s *SerialSampler) Read(pin int) int {
	s.mu.Lock()
	connected, done := s.connected, s.done
	s.mu.Unlock()

	if !connected {
		return 0
	}
	select {
	case v := <-s.readings:
		return v
	case <-done:
		return 0
	}
}

// publish hands one reading to Read, displacing an unconsumed older
// one so the buffered value is always the freshest.
func (s *SerialSampler) publish(v int) {
	for {
		select {
		case s.readings <- v:
			return
		default:
		}
		select {
		case <-s.readings:
		default:
		}
	}
}

// readLoop consumes reading lines until the port closes or the
// context is cancelled.
func (s *SerialSampler) readLoop(ctx context.Context) {
	defer close(s.done)
	defer recovery.HandlePanicFunc(nil)

	scanner := bufio.NewScanner(s.conn)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.Atoi(line)
		if err != nil {
			log.Debug("discarding malformed serial line", "line", line)
			continue
		}
		s.publish(v)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		log.Error("serial reader stopped", "port", s.port, "err", err)
	}
}
