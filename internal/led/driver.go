package led

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/devices/v3/screen1d"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-backdrop/internal/config"
)

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// pixelDev is what nrzled and screen1d devices have in common.
type pixelDev interface {
	Write(pixels []byte) (int, error)
	Halt() error
}

// Strip drives a fixed-length RGB strip through a periph device.
type Strip struct {
	mu    sync.Mutex
	dev   pixelDev
	count int
	port  io.Closer
	name  string
}

func NewStrip(name string, dev pixelDev, count int, port io.Closer) *Strip {
	return &Strip{name: name, dev: dev, count: count, port: port}
}

func (s *Strip) Name() string { return s.name }

func (s *Strip) Count() int { return s.count }

func (s *Strip) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return fmt.Errorf("%s: closed", s.name)
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	if _, err := s.dev.Write(rgb); err != nil {
		return fmt.Errorf("%s write: %w", s.name, err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *Strip) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	s.dev = nil
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// NewNRZ wraps an SPI port as a WS2812 style strip.
func NewNRZ(port spi.Port, count, speedHz int, closer io.Closer) (*Strip, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if speedHz <= 0 {
		speedHz = 2400000
	}
	d, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      physic.Frequency(speedHz) * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return NewStrip(d.String(), d, count, closer), nil
}

// OpenSPI initializes the host and opens the configured SPI port.
func OpenSPI(c config.SPI, count int) (*Strip, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(c.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", c.Dev, err)
	}
	s, err := NewNRZ(p, count, c.SpeedHz, p)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// Console prints the strip as a row of colored cells on the terminal.
func Console(count int) *Strip {
	return NewStrip("console", screen1d.New(&screen1d.Opts{X: count}), count, nil)
}

// Open returns the configured driver, or nil for "off". An unavailable SPI
// port falls back to the console.
func Open(c config.LED, count int, log zerolog.Logger) (Driver, error) {
	switch c.Driver {
	case "", "off":
		return nil, nil
	case "console":
		return Console(count), nil
	case "spi":
		s, err := OpenSPI(c.SPI, count)
		if err != nil {
			log.Warn().Err(err).Msg("no SPI port, printing LEDs at the console")
			return Console(count), nil
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown led driver %q", c.Driver)
}
