package haproxyadmin

import (
	"bufio"
	"context"
	"net"
	"strings"
	"time"
)

// Conn is one duplex byte stream to the runtime API. ReadLine returns
// the next line without its terminator; io.EOF signals orderly peer
// closure.
type Conn interface {
	Send(p []byte) (int, error)
	ReadLine() (string, error)
	SetTimeout(d time.Duration) error
	Close() error
}

// Dialer opens admin connections. The default dials TCP; tests inject
// a scripted in-memory implementation.
type Dialer interface {
	Dial(ctx context.Context, address, port string) (Conn, error)
}

const defaultConnectTimeout = 5 * time.Second

type netDialer struct {
	connectTimeout time.Duration
}

func (d netDialer) Dial(ctx context.Context, address, port string) (Conn, error) {
	nd := net.Dialer{Timeout: d.connectTimeout}
	raw, err := nd.DialContext(ctx, "tcp", net.JoinHostPort(address, port))
	if err != nil {
		return nil, err
	}
	return &netConn{raw: raw, reader: bufio.NewReader(raw)}, nil
}

// netConn applies the configured idle timeout as per-operation
// read/write deadlines on the underlying TCP stream.
type netConn struct {
	raw     net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

func (c *netConn) Send(p []byte) (int, error) {
	if c.timeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	return c.raw.Write(p)
}

func (c *netConn) ReadLine() (string, error) {
	if c.timeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.timeout))
	}
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *netConn) SetTimeout(d time.Duration) error {
	c.timeout = d
	return nil
}

func (c *netConn) Close() error {
	return c.raw.Close()
}
