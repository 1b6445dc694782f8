package haproxyadmin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/opsart/haproxyadmin/internal/observability"
)

// Result holds one parsed response: "key: value" lines split on the
// first ": " occurrence, later duplicates overwriting earlier ones. A
// line without the delimiter contributes its full text as a key with
// an empty value.
type Result map[string]string

// Run sends one raw command and parses its response. The caller owns
// newline termination and any payload framing; the facade operations
// wrap their commands before calling here. The returned severity is
// SeverityNone unless the first response line carried a "[n]: "
// signal; error-class severities (0-4) yield a *ProtocolError and no
// mapping.
func (c *Client) Run(ctx context.Context, command string) (Result, int, error) {
	if command == "" {
		return nil, SeverityNone, ErrEmptyCommand
	}
	started := time.Now()
	if err := c.ensureConnected(ctx); err != nil {
		observability.RecordCommand("connect_error", time.Since(started))
		return nil, SeverityNone, err
	}
	c.log.Debug().Str("command", strings.TrimRight(command, "\n")).Msg("send")
	if _, err := c.conn.Send([]byte(command)); err != nil {
		observability.RecordCommand("write_error", time.Since(started))
		return nil, SeverityNone, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	res, severity, err := c.readResponse()
	status := "ok"
	var perr *ProtocolError
	switch {
	case errors.As(err, &perr):
		status = "protocol_error"
	case err != nil:
		status = "read_error"
	}
	observability.RecordCommand(status, time.Since(started))
	return res, severity, err
}

// readResponse consumes one response turn line by line. The turn ends
// at the first empty line, or at orderly peer closure: the connection
// is then forgotten and the lines read so far stand as the result.
// Only the first line is inspected for a severity signal; an
// error-class signal aborts the turn with the remainder of that line
// as the message, a notice-class signal is recorded and skipped.
func (c *Client) readResponse() (Result, int, error) {
	res := Result{}
	severity := SeverityNone
	for first := true; ; first = false {
		line, err := c.conn.ReadLine()
		if err != nil {
			if isClosed(err) {
				_ = c.teardown()
				return res, severity, nil
			}
			return nil, severity, fmt.Errorf("read response: %w", err)
		}
		c.log.Debug().Str("line", line).Msg("recv")
		if line == "" {
			return res, severity, nil
		}
		if first {
			if code, message, ok := parseSeveritySignal(line); ok {
				severity = code
				if IsErrorSeverity(code) {
					return nil, code, &ProtocolError{Severity: code, Message: message}
				}
				continue
			}
		}
		key, value, _ := strings.Cut(line, ": ")
		res[key] = value
	}
}

// isClosed matches orderly closure signals from the transport.
func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
