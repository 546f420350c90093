package service

import (
	"fmt"
	"time"

	"freeze_dryer/internal/device"
	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
	"freeze_dryer/internal/protocol"
	"freeze_dryer/internal/transport"
)

// DeviceFactory builds a fresh, disconnected device for a connection type.
type DeviceFactory func(kind models.ConnectionType) (device.Service, error)

// DeviceConfig holds the settings of both device kinds.
type DeviceConfig struct {
	SerialPort   string
	BaudRate     int
	LineAssembly bool

	SimTick         time.Duration
	SimConnectDelay time.Duration
	SimFinishDelay  time.Duration
}

// NewDeviceFactory returns a factory producing simulators and serial links.
func NewDeviceFactory(cfg DeviceConfig, log *logger.Logger) DeviceFactory {
	if log == nil {
		log = logger.Nop()
	}
	return func(kind models.ConnectionType) (device.Service, error) {
		switch kind {
		case models.ConnectionMock:
			return device.NewSimulator(log.Named("sim"),
				device.WithTick(cfg.SimTick),
				device.WithConnectDelay(cfg.SimConnectDelay),
				device.WithFinishDelay(cfg.SimFinishDelay),
			), nil
		case models.ConnectionSerial:
			var opts []protocol.Option
			if cfg.LineAssembly {
				opts = append(opts, protocol.WithLineAssembly())
			}
			opener := transport.NewSerialOpener(cfg.SerialPort, cfg.BaudRate)
			return device.NewSerialService(opener, log.Named("serial"), opts...), nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, kind)
		}
	}
}
