package haproxyadmin

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// CheckCertPayload verifies that a hot-replacement payload carries at
// least one parseable PEM certificate before a transaction is opened.
// Key blocks and chain order are left for the server to judge.
func CheckCertPayload(payload string) error {
	rest := []byte(payload)
	found := false
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		if _, err := x509.ParseCertificate(block.Bytes); err != nil {
			return fmt.Errorf("parse certificate: %w", err)
		}
		found = true
	}
	if !found {
		return ErrNoCertificate
	}
	return nil
}
