// Package keygen produces the opaque identifiers stamped onto orders and
// order items at checkout. License keys are high-entropy and only guaranteed
// unique by the storage layer's unique index; order numbers embed a UTC
// timestamp so listings sort roughly by time for humans.
package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

const (
	licensePrefix = "LIC"
	orderPrefix   = "ORD"

	// orderNumberTimeLayout is a compact UTC timestamp to the second.
	orderNumberTimeLayout = "20060102150405"
)

// LicenseKey returns a key of the form LIC-XXXXXXXX-XXXXXXXX where each
// segment is 8 uppercase hex characters (64 bits of entropy combined).
// Callers must treat collisions as a storage-level constraint violation and
// retry with a fresh key.
func LicenseKey() string {
	return licensePrefix + "-" + randomHex(4) + "-" + randomHex(4)
}

// OrderNumber returns an identifier of the form ORD-<UTC timestamp>-<6 hex>.
// The timestamp gives human-sortable ordering; the suffix disambiguates
// orders created within the same second.
func OrderNumber(now time.Time) string {
	return orderPrefix + "-" + now.UTC().Format(orderNumberTimeLayout) + "-" + randomHex(3)
}

func randomHex(n int) string {
	buf := make([]byte, n)
	// rand.Read only fails when the OS entropy source is broken, in which
	// case nothing else in the process is trustworthy either.
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
