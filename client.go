package haproxyadmin

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/opsart/haproxyadmin/internal/logging"
	"github.com/opsart/haproxyadmin/internal/observability"
)

// severityDirective forces numeric severity prefixes on every wrapped
// command so responses are machine parseable.
const severityDirective = "set severity-output number; "

// Client is one serialized command stream to a runtime API endpoint.
// A Client is not safe for concurrent use.
type Client struct {
	cfg      Config
	dialer   Dialer
	log      zerolog.Logger
	probeCmd string
	conn     Conn
}

// New builds a Client for one endpoint, dialing TCP on first use.
func New(cfg Config) (*Client, error) {
	return NewWithDialer(cfg, nil)
}

// NewWithDialer builds a Client with an injected transport, for tests
// and non-TCP streams.
func NewWithDialer(cfg Config, dialer Dialer) (*Client, error) {
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dialer == nil {
		dialer = netDialer{connectTimeout: defaultConnectTimeout}
	}
	observability.RegisterMetrics()
	return &Client{
		cfg:      cfg,
		dialer:   dialer,
		log:      logging.Component("haproxyadmin", cfg.Debug),
		probeCmd: cfg.timeoutCommand(),
	}, nil
}

// Info reports process identity and counters from "show info".
func (c *Client) Info(ctx context.Context) (Result, error) {
	res, _, err := c.Run(ctx, severityDirective+"show info\n")
	if err != nil {
		return nil, err
	}
	scrub(res, "Name")
	return res, nil
}

// Certs lists the certificate files known to the running process,
// keyed by filename.
func (c *Client) Certs(ctx context.Context) (Result, error) {
	res, _, err := c.Run(ctx, severityDirective+"show ssl cert\n")
	if err != nil {
		return nil, err
	}
	scrub(res, "# filename")
	return res, nil
}

// CertNames returns the certificate inventory as a sorted name list.
func (c *Client) CertNames(ctx context.Context) ([]string, error) {
	res, err := c.Certs(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(res))
	for name := range res {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CertInfo reports detail for one loaded certificate.
func (c *Client) CertInfo(ctx context.Context, name string) (Result, error) {
	res, _, err := c.Run(ctx, severityDirective+"show ssl cert "+name+"\n")
	if err != nil {
		return nil, err
	}
	scrub(res, "Filename")
	return res, nil
}

// UpdateCert hot-replaces one certificate through the runtime API
// set/commit transaction. A failed set step is aborted before the
// original error is returned; a failed commit is returned without an
// abort.
func (c *Client) UpdateCert(ctx context.Context, name, payload string) error {
	_, _, err := c.Run(ctx, severityDirective+"set ssl cert "+name+" <<\n"+payload+"\n\n")
	if err != nil {
		if _, _, abortErr := c.Run(ctx, severityDirective+"abort ssl cert "+name+"\n"); abortErr != nil {
			c.log.Debug().Err(abortErr).Str("cert", name).Msg("abort after failed set")
		}
		return err
	}
	if _, _, err := c.Run(ctx, severityDirective+"commit ssl cert "+name+"\n"); err != nil {
		return fmt.Errorf("%w: commit %q: %w", ErrTransaction, name, err)
	}
	return nil
}

// Close tears down the live connection if any; safe to call repeatedly.
func (c *Client) Close() error {
	return c.teardown()
}

// scrub drops response noise: the operation's header echo, its
// interactive-prompt echo, and the empty-key artifact.
func scrub(res Result, header string) {
	delete(res, header)
	delete(res, "> "+header)
	delete(res, "")
}
