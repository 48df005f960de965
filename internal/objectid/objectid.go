// Package objectid generates and validates the 24 hex character identifiers
// used as primary keys for every record.
//
// Layout (12 bytes): 4-byte big-endian unix seconds, 5 random bytes fixed per
// process, 3-byte big-endian counter seeded randomly.
package objectid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"sync/atomic"
	"time"
)

// Length is the length of the hex form.
const Length = 24

var (
	processUnique [5]byte
	counter       atomic.Uint32
)

func init() {
	var seed [4]byte
	if _, err := rand.Read(processUnique[:]); err != nil {
		panic("objectid: cannot read random bytes: " + err.Error())
	}
	if _, err := rand.Read(seed[:]); err != nil {
		panic("objectid: cannot read random bytes: " + err.Error())
	}
	counter.Store(binary.BigEndian.Uint32(seed[:]))
}

// New returns a fresh identifier.
func New() string {
	return newAt(time.Now())
}

func newAt(t time.Time) string {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:4], uint32(t.Unix()))
	copy(b[4:9], processUnique[:])
	c := counter.Add(1)
	b[9] = byte(c >> 16)
	b[10] = byte(c >> 8)
	b[11] = byte(c)
	return hex.EncodeToString(b[:])
}

// IsValid reports whether s is exactly 24 hex characters.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// Timestamp returns the creation time embedded in a valid identifier.
func Timestamp(s string) (time.Time, bool) {
	if !IsValid(s) {
		return time.Time{}, false
	}
	b, _ := hex.DecodeString(s)
	return time.Unix(int64(binary.BigEndian.Uint32(b[0:4])), 0), true
}
