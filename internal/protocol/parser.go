// Package protocol implements the newline-delimited JSON line protocol spoken
// by the dryer controller board.
package protocol

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// MessageTypeStatus marks an inbound status report.
const MessageTypeStatus = "status"

// maxPending bounds the line-assembly buffer when the device never sends a line break.
const maxPending = 64 * 1024

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithLineAssembly keeps the unterminated tail of each chunk and prepends it to
// the next one, so records split across reads are parsed once complete.
func WithLineAssembly() Option {
	return func(p *Parser) { p.assemble = true }
}

// Parser extracts status payloads from raw inbound text.
//
// By default every chunk is split on its own and fragments that span chunk
// boundaries are dropped. A Parser is not safe for concurrent use; the read
// loop that owns it is its only caller.
type Parser struct {
	assemble bool
	pending  strings.Builder
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Feed consumes one chunk of decoded text and returns the payloads of every
// status record it completed, in arrival order.
func (p *Parser) Feed(chunk string) []json.RawMessage {
	if p.assemble {
		chunk = p.takeComplete(chunk)
	}
	var out []json.RawMessage
	for _, frag := range splitLines(chunk) {
		if payload, ok := decodeStatus(frag); ok {
			out = append(out, payload)
		}
	}
	return out
}

// takeComplete returns the newline-terminated part of pending+chunk and keeps the rest.
func (p *Parser) takeComplete(chunk string) string {
	p.pending.WriteString(chunk)
	buf := p.pending.String()
	cut := strings.LastIndexAny(buf, "\r\n")
	p.pending.Reset()
	if cut < 0 {
		if len(buf) <= maxPending {
			p.pending.WriteString(buf)
		}
		return ""
	}
	if rest := buf[cut+1:]; len(rest) <= maxPending {
		p.pending.WriteString(rest)
	}
	return buf[:cut+1]
}

// Pending reports the buffered, not yet terminated text in line-assembly mode.
func (p *Parser) Pending() string {
	return p.pending.String()
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\r' || r == '\n' })
}

func decodeStatus(frag string) (json.RawMessage, bool) {
	trimmed := strings.TrimLeftFunc(frag, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, false
	}
	if env.Type != MessageTypeStatus {
		return nil, false
	}
	payload := bytes.TrimSpace(env.Payload)
	if len(payload) == 0 || payload[0] != '{' {
		return nil, false
	}
	return env.Payload, true
}
