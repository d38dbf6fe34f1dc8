// Package fingerprint obfuscates PII (email, phone) before it leaves the process.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Modes accepted by New.
const (
	ModeSHA256 = "sha256"
	ModeFast   = "fast"
)

// Fingerprinter maps a value to a deterministic fingerprint. Empty input is valid.
type Fingerprinter interface {
	Fingerprint(value string) string
}

// New returns the Fingerprinter for mode. An empty mode selects SHA-256.
func New(mode string) (Fingerprinter, error) {
	switch mode {
	case "", ModeSHA256:
		return SHA256{}, nil
	case ModeFast:
		return Fast{}, nil
	default:
		return nil, fmt.Errorf("unknown fingerprint mode %q", mode)
	}
}

// SHA256 fingerprints with a SHA-256 digest, hex encoded.
type SHA256 struct{}

func (SHA256) Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return "sha256_" + hex.EncodeToString(sum[:])
}

// Fast is a non-cryptographic fingerprint (xxHash64 plus the input length).
// It only keeps raw values out of telemetry and must not be used where preimage resistance matters.
type Fast struct{}

func (Fast) Fingerprint(value string) string {
	return fmt.Sprintf("xxh64_%016x%s", xxhash.Sum64String(value), strconv.FormatInt(int64(len(value)), 16))
}
