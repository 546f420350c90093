// Package transport provides the byte-stream link to the dryer controller board.
package transport

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrUnsupported is returned when the host cannot enumerate serial ports.
	ErrUnsupported = errors.New("serial ports are not supported on this host")
	// ErrNoPort is returned when no candidate port is available or the chosen one is gone.
	ErrNoPort = errors.New("no serial port selected")
)

// Port is a duplex byte stream with independently closable halves.
type Port interface {
	io.Reader
	io.Writer
	// CancelRead unblocks an in-flight Read.
	CancelRead() error
	// CloseWrite flushes and releases the write half.
	CloseWrite() error
	Close() error
}

// Opener selects and opens a port.
type Opener interface {
	Open(ctx context.Context) (Port, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context) (Port, error)

func (f OpenerFunc) Open(ctx context.Context) (Port, error) { return f(ctx) }
