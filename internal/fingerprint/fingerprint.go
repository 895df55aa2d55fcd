// Package fingerprint encodes and detects the marker that tags Koney's own
// synthetic verification processes, so that internal self-checks never
// surface as real alerts.
package fingerprint

import (
	"fmt"
	"strings"
)

// Marker is the fixed numeric fingerprint embedded in self-test process
// invocations. It must match the value the operator uses when it runs its
// trap verification commands.
//
// TODO: randomize on startup and sync the value with the operator.
const Marker = 1337

// EncodeEcho encodes a fingerprint for an `echo` invocation, e.g.
// `echo -e "foobar\c KONEY_FINGERPRINT_1337"`. Everything after the `\c`
// escape sequence is ignored by `echo -e`, so the command still behaves
// normally while carrying the marker in its argument string.
func EncodeEcho(code int) string {
	return fmt.Sprintf("KONEY_FINGERPRINT_%d", code)
}

// EncodeCat encodes a fingerprint for a `cat` invocation, e.g.
// `cat -u -uu -u /etc/decoy`. The marker's binary representation is spelled
// out flag by flag, `-u` for 0 and `-uu` for 1. `cat` ignores repeated `-u`
// flags, so the command still behaves normally.
func EncodeCat(code int) string {
	bits := fmt.Sprintf("%b", code)

	tokens := make([]string, 0, len(bits))
	for _, bit := range bits {
		if bit == '0' {
			tokens = append(tokens, "-u")
		} else {
			tokens = append(tokens, "-uu")
		}
	}

	return strings.Join(tokens, " ")
}

// DecodeCat reverses EncodeCat, turning a `-u`/`-uu` flag sequence back into
// the encoded marker value.
func DecodeCat(encoded string) (int, error) {
	if encoded == "" {
		return 0, fmt.Errorf("empty fingerprint encoding")
	}

	code := 0
	for _, token := range strings.Fields(encoded) {
		code <<= 1
		switch token {
		case "-u":
		case "-uu":
			code |= 1
		default:
			return 0, fmt.Errorf("unexpected fingerprint token %q", token)
		}
	}
	return code, nil
}
