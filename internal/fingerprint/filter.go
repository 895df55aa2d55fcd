package fingerprint

import (
	"strings"

	"github.com/patrickpichler/koney/internal/types"
)

// IsSelfTest reports whether the alert was raised by one of Koney's own
// verification processes, identified by either marker encoding appearing in
// the process argument string.
//
// Alerts without process context are never treated as self-tests: when in
// doubt, prefer a noisy alert over a silently dropped one.
func IsSelfTest(alert *types.DeceptionAlert) bool {
	if alert == nil || alert.Process == nil {
		return false
	}
	args := alert.Process.Arguments
	if args == "" {
		return false
	}

	return strings.Contains(args, EncodeEcho(Marker)) ||
		strings.Contains(args, EncodeCat(Marker))
}
