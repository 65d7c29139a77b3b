package serial

import (
	"fmt"
	"io"
	"time"

	"github.com/tr4cks/picled/modules"
	"go.bug.st/serial"
)

// Port is the subset of serial.Port the module needs.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

type SerialModule struct {
	modules.DefaultModule
	Config SerialConfig
	Open   func(name string, mode *serial.Mode) (Port, error)
}

type SerialConfig struct {
	Port       string        `mapstructure:"port" validate:"required"`
	BaudRate   int           `mapstructure:"baud-rate" validate:"gt=0"`
	Ack        bool          `mapstructure:"ack"`
	AckTimeout time.Duration `mapstructure:"ack-timeout" validate:"gt=0"`
}

func New() modules.Module {
	return &SerialModule{
		Config: SerialConfig{
			Port:       "/dev/ttyS0",
			BaudRate:   9600,
			AckTimeout: 500 * time.Millisecond,
		},
		Open: func(name string, mode *serial.Mode) (Port, error) {
			return serial.Open(name, mode)
		},
	}
}

func (m *SerialModule) Init(config map[string]interface{}) error {
	err := modules.Validate(config, &m.Config)
	if err != nil {
		return fmt.Errorf("error validating %q module configuration: %w", "serial", err)
	}
	return nil
}

// Write opens the port at 8N1, sends the command byte and, when acknowledgements
// are enabled, waits for the firmware to echo it back.
func (m *SerialModule) Write(on bool) (err error) {
	port, err := m.Open(m.Config.Port, &serial.Mode{
		BaudRate: m.Config.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("error opening serial port %q: %w", m.Config.Port, err)
	}
	defer func() {
		if closeErr := port.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("error closing serial port %q: %w", m.Config.Port, closeErr)
		}
	}()

	command := modules.Command(on)
	if m.Config.Ack {
		if err = port.ResetInputBuffer(); err != nil {
			return fmt.Errorf("error flushing serial port %q: %w", m.Config.Port, err)
		}
	}
	if _, err = port.Write([]byte{command}); err != nil {
		return fmt.Errorf("error writing to serial port %q: %w", m.Config.Port, err)
	}
	if !m.Config.Ack {
		return nil
	}
	return m.awaitAck(port, command)
}

func (m *SerialModule) awaitAck(port Port, command byte) error {
	if err := port.SetReadTimeout(m.Config.AckTimeout); err != nil {
		return fmt.Errorf("error setting read timeout: %w", err)
	}
	buf := make([]byte, 1)
	n, err := port.Read(buf)
	if err != nil {
		return fmt.Errorf("error reading acknowledgement: %w", err)
	}
	// go.bug.st/serial reports a timeout as a zero-length read
	if n == 0 {
		return fmt.Errorf("no acknowledgement received within %s", m.Config.AckTimeout)
	}
	if buf[0] != command {
		return fmt.Errorf("unexpected acknowledgement %q (sent %q)", buf[0], command)
	}
	return nil
}
