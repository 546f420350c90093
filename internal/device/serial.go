package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"freeze_dryer/internal/logger"
	"freeze_dryer/internal/models"
	"freeze_dryer/internal/protocol"
	"freeze_dryer/internal/transport"
)

// Diagnostic lines forwarded to data observers.
const (
	diagConnected    = "\r\n--- Serial Port Connected ---\r\n"
	diagConnFailed   = "\r\n--- Connection Failed: %s ---\r\n"
	diagReadError    = "\r\n--- Read Error: %s ---\r\n"
	diagDisconnected = "\r\n--- Serial Port Disconnected ---\r\n"
)

const readBufSize = 4096

// link is one open connection and its read loop.
type link struct {
	port transport.Port
	stop atomic.Bool
	done chan struct{}
}

// SerialService drives the controller board over a line-oriented serial link.
type SerialService struct {
	opener     transport.Opener
	log        *logger.Logger
	parserOpts []protocol.Option

	cell *statusCell
	data hub[string]

	connMu  sync.Mutex // serializes Connect and Disconnect
	linkMu  sync.Mutex
	link    *link
	writeMu sync.Mutex
}

var _ Service = (*SerialService)(nil)

func NewSerialService(opener transport.Opener, log *logger.Logger, parserOpts ...protocol.Option) *SerialService {
	if log == nil {
		log = logger.Nop()
	}
	return &SerialService{
		opener:     opener,
		log:        log,
		parserOpts: parserOpts,
		cell:       newStatusCell(),
	}
}

func (s *SerialService) OnStatusUpdate(fn func(models.DryerStatus)) func() {
	return s.cell.observers.add(fn)
}

func (s *SerialService) OnData(fn func(string)) func() {
	return s.data.add(fn)
}

func (s *SerialService) Status() models.DryerStatus {
	return s.cell.get()
}

// Connect opens the port and starts reading. It is a no-op while connected.
func (s *SerialService) Connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.current() != nil {
		return nil
	}

	port, err := s.opener.Open(ctx)
	if err != nil {
		s.log.Warnw("serial_connect_failed", "err", err)
		s.data.publish(fmt.Sprintf(diagConnFailed, err))
		return fmt.Errorf("connect serial: %w", err)
	}

	l := &link{port: port, done: make(chan struct{})}
	s.linkMu.Lock()
	s.link = l
	s.linkMu.Unlock()

	s.cell.update(func(st *models.DryerStatus) bool {
		st.IsConnected = true
		return true
	})
	s.data.publish(diagConnected)
	s.log.Infow("serial_connected")

	go s.readLoop(l)
	return nil
}

// Disconnect stops the read loop and releases the port. It always ends
// disconnected and never fails.
func (s *SerialService) Disconnect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	s.linkMu.Lock()
	l := s.link
	s.link = nil
	s.linkMu.Unlock()

	if l != nil {
		// Set before anything touches the port so the read loop treats the
		// teardown as intentional.
		l.stop.Store(true)
		st := s.cell.get()
		if st.ProcessState == models.StateRunning || st.ProcessState == models.StatePaused {
			s.sendCommand(ctx, l, protocol.StopCommand())
		}

		if err := l.port.CancelRead(); err != nil {
			s.log.Warnw("serial_cancel_read_failed", "err", err)
		}
		if err := l.port.CloseWrite(); err != nil {
			s.log.Warnw("serial_close_write_failed", "err", err)
		}
		if err := l.port.Close(); err != nil {
			s.log.Warnw("serial_close_failed", "err", err)
		}

		select {
		case <-l.done:
		case <-ctx.Done():
			s.log.Warnw("serial_read_loop_wait_aborted", "err", ctx.Err())
		}
	}

	s.cell.update(func(st *models.DryerStatus) bool {
		if l == nil && !st.IsConnected && st.ProcessState == models.StateIdle && st.ActiveRecipe == nil {
			return false
		}
		st.ResetProcess()
		st.IsConnected = false
		return true
	})

	if l != nil {
		s.data.publish(diagDisconnected)
		s.log.Infow("serial_disconnected")
	}
	return nil
}

func (s *SerialService) StartProcess(recipe models.Recipe) {
	var reason error
	started := s.cell.update(func(st *models.DryerStatus) bool {
		if reason = canStart(*st, recipe); reason != nil {
			return false
		}
		beginRun(st, recipe)
		return true
	})
	if !started {
		s.log.Debugw("serial_start_ignored", "recipe_id", recipe.ID, "reason", reason)
		return
	}
	s.command(protocol.StartCommand(recipe))
}

func (s *SerialService) PauseProcess() {
	if s.transition(models.StateRunning, models.StatePaused) {
		s.command(protocol.PauseCommand())
	}
}

func (s *SerialService) ResumeProcess() {
	if s.transition(models.StatePaused, models.StateRunning) {
		s.command(protocol.ResumeCommand())
	}
}

// StopProcess always resets the local run and tells the board to stop.
func (s *SerialService) StopProcess() {
	s.cell.update(func(st *models.DryerStatus) bool {
		st.ResetProcess()
		return true
	})
	s.command(protocol.StopCommand())
}

// SendData writes raw text to the board. Without a link it only logs.
func (s *SerialService) SendData(ctx context.Context, text string) {
	l := s.current()
	if l == nil {
		s.log.Warnw("serial_send_without_link", "bytes", len(text))
		return
	}
	s.write(ctx, l, text)
}

func (s *SerialService) transition(from, to models.ProcessState) bool {
	return s.cell.update(func(st *models.DryerStatus) bool {
		if st.ProcessState != from {
			return false
		}
		st.ProcessState = to
		return true
	})
}

func (s *SerialService) command(cmd protocol.Command) {
	l := s.current()
	if l == nil {
		s.log.Debugw("serial_command_without_link", "command", cmd.Command)
		return
	}
	s.sendCommand(context.Background(), l, cmd)
}

func (s *SerialService) sendCommand(ctx context.Context, l *link, cmd protocol.Command) {
	line, err := protocol.EncodeCommand(cmd)
	if err != nil {
		s.log.Errorw("serial_encode_command_failed", "command", cmd.Command, "err", err)
		return
	}
	s.write(ctx, l, line)
}

func (s *SerialService) write(ctx context.Context, l *link, text string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		s.log.Warnw("serial_write_cancelled", "err", err)
		return
	}
	if _, err := io.WriteString(l.port, text); err != nil {
		s.log.Warnw("serial_write_failed", "bytes", len(text), "err", err)
	}
}

func (s *SerialService) current() *link {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()
	return s.link
}

// readLoop decodes the stream as UTF-8, forwards the text to data observers
// and applies every status record it carries. It exits on EOF, on a read
// error or once the link is stopped.
func (s *SerialService) readLoop(l *link) {
	defer close(l.done)

	parser := protocol.NewParser(s.parserOpts...)
	r := transform.NewReader(l.port, unicode.UTF8.NewDecoder())
	buf := make([]byte, readBufSize)

	for !l.stop.Load() {
		n, err := r.Read(buf)
		if n > 0 {
			s.handleText(parser, string(buf[:n]))
		}
		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) && !l.stop.Load() {
			s.log.Warnw("serial_read_failed", "err", err)
			s.data.publish(fmt.Sprintf(diagReadError, err))
		}
		break
	}

	if !l.stop.Load() {
		s.detach(l)
	}
}

func (s *SerialService) handleText(parser *protocol.Parser, text string) {
	s.data.publish(text)
	for _, payload := range parser.Feed(text) {
		s.cell.update(func(st *models.DryerStatus) bool {
			if err := protocol.MergeStatus(st, payload); err != nil {
				s.log.Debugw("serial_status_dropped", "err", err)
				return false
			}
			st.IsConnected = true
			return true
		})
	}
}

// detach releases a link whose stream ended on its own. The process fields
// are left as they were.
func (s *SerialService) detach(l *link) {
	s.linkMu.Lock()
	if s.link != l {
		s.linkMu.Unlock()
		return
	}
	s.link = nil
	s.linkMu.Unlock()

	if err := l.port.Close(); err != nil {
		s.log.Warnw("serial_close_failed", "err", err)
	}
	s.cell.update(func(st *models.DryerStatus) bool {
		st.IsConnected = false
		return true
	})
	s.log.Warnw("serial_link_lost")
}
