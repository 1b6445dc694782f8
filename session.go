package haproxyadmin

import (
	"context"
	"fmt"

	"github.com/opsart/haproxyadmin/internal/observability"
)

// interactiveCommand switches the endpoint into interactive mode so the
// connection survives across commands instead of closing after one.
const interactiveCommand = "prompt\n"

// ensureConnected guarantees a live connection: a fresh dial plus
// interactive-mode negotiation when none exists, otherwise a liveness
// probe with a transparent reconnect when the probe finds a dead peer.
func (c *Client) ensureConnected(ctx context.Context) error {
	if c.conn == nil {
		return c.connect(ctx)
	}
	if c.probe() {
		return nil
	}
	_ = c.teardown()
	observability.RecordReconnect()
	c.log.Debug().Msg("probe found dead peer, reconnecting")
	return c.connect(ctx)
}

// connect dials the endpoint, applies the idle timeout, and discards
// the single banner line produced by the mode switch.
func (c *Client) connect(ctx context.Context) error {
	conn, err := c.dialer.Dial(ctx, c.cfg.Address, c.cfg.Port)
	if err != nil {
		return fmt.Errorf("%w: %s:%s: %w", ErrConnect, c.cfg.Address, c.cfg.Port, err)
	}
	if err := conn.SetTimeout(c.cfg.Timeout); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: set timeout: %w", ErrConnect, err)
	}
	if _, err := conn.Send([]byte(interactiveCommand)); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: interactive handshake: %w", ErrConnect, err)
	}
	if _, err := conn.ReadLine(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: interactive handshake: %w", ErrConnect, err)
	}
	c.log.Debug().Str("address", c.cfg.Address).Str("port", c.cfg.Port).Msg("connected")
	c.conn = conn
	return nil
}

// probe writes the cached idle-timeout directive and reads its single
// response line. A zero-byte write, a write error, or a failed read
// all mean the peer dropped the connection while idle.
func (c *Client) probe() bool {
	n, err := c.conn.Send([]byte(c.probeCmd))
	if err != nil || n == 0 {
		observability.RecordProbeFailure()
		return false
	}
	if _, err := c.conn.ReadLine(); err != nil {
		observability.RecordProbeFailure()
		return false
	}
	return true
}

// teardown closes and forgets the live connection; no-op when absent.
func (c *Client) teardown() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
