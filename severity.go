package haproxyadmin

import (
	"fmt"
	"strconv"
)

// SeverityNone marks a response that carried no severity signal.
const SeverityNone = -1

// Codes below the threshold (emerg through warning) signal a failed command.
const errorSeverityThreshold = 5

var severityLabels = [...]string{"emerg", "alert", "crit", "err", "warning", "notice", "info", "debug"}

// ParseSeverity converts a textual severity code to its numeric form.
func ParseSeverity(raw string) (int, error) {
	code, err := strconv.Atoi(raw)
	if err != nil {
		return SeverityNone, fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
	return code, nil
}

// IsErrorSeverity reports whether one severity code signals a failed command.
func IsErrorSeverity(code int) bool {
	return code >= 0 && code < errorSeverityThreshold
}

// SeverityLabel returns the syslog-style label for one severity code.
func SeverityLabel(code int) string {
	if code < 0 || code >= len(severityLabels) {
		return "unknown"
	}
	return severityLabels[code]
}

// parseSeveritySignal matches the "[n]: " prefix haproxy emits under
// "set severity-output number". Only digits 0-7 match; anything else
// is an ordinary data line.
func parseSeveritySignal(line string) (code int, message string, ok bool) {
	if len(line) < 5 || line[0] != '[' || line[2] != ']' || line[3] != ':' || line[4] != ' ' {
		return SeverityNone, "", false
	}
	if line[1] < '0' || line[1] > '7' {
		return SeverityNone, "", false
	}
	return int(line[1] - '0'), line[5:], true
}
