package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const DefaultBaudRate = 115200

// PortInfo describes a port reported by the host.
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

// SerialOpener opens a serial port at 8N1. With an empty PortName the first
// USB port reported by the host is used.
type SerialOpener struct {
	PortName string
	BaudRate int

	list func() ([]*enumerator.PortDetails, error)
	open func(name string, mode *serial.Mode) (serial.Port, error)
}

func NewSerialOpener(portName string, baud int) *SerialOpener {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &SerialOpener{
		PortName: portName,
		BaudRate: baud,
		list:     enumerator.GetDetailedPortsList,
		open:     serial.Open,
	}
}

func (o *SerialOpener) Open(ctx context.Context) (Port, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := o.PortName
	if name == "" {
		ports, err := listPorts(o.list)
		if err != nil {
			return nil, err
		}
		name = chooseUSB(ports)
		if name == "" {
			return nil, ErrNoPort
		}
	}

	mode := &serial.Mode{
		BaudRate: o.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := o.open(name, mode)
	if err != nil {
		var pe *serial.PortError
		if errors.As(err, &pe) && pe.Code() == serial.PortNotFound {
			return nil, fmt.Errorf("%w: %s: %v", ErrNoPort, name, err)
		}
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return &serialPort{p: p}, nil
}

// ListPorts returns every serial port the host reports.
func ListPorts() ([]PortInfo, error) {
	return listPorts(enumerator.GetDetailedPortsList)
}

func listPorts(list func() ([]*enumerator.PortDetails, error)) ([]PortInfo, error) {
	details, err := list()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		out = append(out, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	return out, nil
}

func chooseUSB(ports []PortInfo) string {
	for _, p := range ports {
		if p.IsUSB {
			return p.Name
		}
	}
	return ""
}

// serialPort maps the Port halves onto a go.bug.st port, which only offers a
// single Close that also unblocks pending reads.
type serialPort struct {
	p      serial.Port
	closed atomic.Bool
	once   sync.Once
	err    error
}

func (s *serialPort) Read(b []byte) (int, error)  { return s.p.Read(b) }
func (s *serialPort) Write(b []byte) (int, error) { return s.p.Write(b) }

func (s *serialPort) CancelRead() error { return s.Close() }

func (s *serialPort) CloseWrite() error {
	if s.closed.Load() {
		return nil
	}
	return s.p.Drain()
}

func (s *serialPort) Close() error {
	s.once.Do(func() {
		s.closed.Store(true)
		s.err = s.p.Close()
	})
	return s.err
}
