package haproxyadmin

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

// scriptConn is a scripted in-memory stream: writes are recorded,
// reads are served from a queued line script, exhaustion reads as
// orderly closure unless readErr is set.
type scriptConn struct {
	sent          []string
	lines         []string
	sendZero      bool
	sendErr       error
	failAfterSend int
	readErr       error
	timeout       time.Duration
	closed        bool
}

func (c *scriptConn) Send(p []byte) (int, error) {
	if c.sendErr != nil && len(c.sent) >= c.failAfterSend {
		return 0, c.sendErr
	}
	if c.sendZero {
		return 0, nil
	}
	c.sent = append(c.sent, string(p))
	return len(p), nil
}

func (c *scriptConn) ReadLine() (string, error) {
	if len(c.lines) == 0 {
		if c.readErr != nil {
			return "", c.readErr
		}
		return "", io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

func (c *scriptConn) SetTimeout(d time.Duration) error {
	c.timeout = d
	return nil
}

func (c *scriptConn) Close() error {
	c.closed = true
	return nil
}

type scriptDialer struct {
	conns []*scriptConn
	dials int
	err   error
}

func (d *scriptDialer) Dial(ctx context.Context, address, port string) (Conn, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.dials >= len(d.conns) {
		return nil, errors.New("no scripted connection left")
	}
	conn := d.conns[d.dials]
	d.dials++
	return conn, nil
}

// newScriptedClient builds a Client over scripted connections. Each
// script's first line is consumed as the interactive-mode banner.
func newScriptedClient(t *testing.T, conns ...*scriptConn) (*Client, *scriptDialer) {
	t.Helper()
	dialer := &scriptDialer{conns: conns}
	client, err := NewWithDialer(Config{}, dialer)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, dialer
}
