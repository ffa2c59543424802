package id

import (
	"crypto/rand"
	"encoding/hex"
)

// recordIDBytes yields 32 lowercase hex characters once encoded.
const recordIDBytes = 16

// NewRecordID returns the public identifier stamped on a vendor
// onboarding record at submit time: 32 lowercase hex characters, no
// separators or prefixes. The internal numeric PK never leaves the
// database; this is the only id exposed on the wire.
func NewRecordID() string {
	b := make([]byte, recordIDBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
