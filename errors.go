package haproxyadmin

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEndpoint = errors.New("haproxyadmin: missing endpoint")
	ErrInvalidSeverity = errors.New("haproxyadmin: invalid severity")
	ErrConnect         = errors.New("haproxyadmin: connect failed")
	ErrWrite           = errors.New("haproxyadmin: write failed")
	ErrEmptyCommand    = errors.New("haproxyadmin: empty command")
	ErrTransaction     = errors.New("haproxyadmin: cert transaction failed")
	ErrNoCertificate   = errors.New("haproxyadmin: no certificate in payload")
)

// ProtocolError is a server-signaled failure: the first response line
// carried an error-class severity prefix.
type ProtocolError struct {
	Severity int
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("haproxyadmin: server %s: %s", SeverityLabel(e.Severity), e.Message)
}
