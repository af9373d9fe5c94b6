package uuidv7

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/google/uuid"
)

// Generator mints UUIDv7 values (RFC 9562, millisecond precision). Zero
// fields fall back to time.Now and crypto/rand.
type Generator struct {
	Now  func() time.Time
	Rand io.Reader
}

func (g Generator) New() (uuid.UUID, error) {
	r := g.Rand
	if r == nil {
		r = rand.Reader
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}

	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return uuid.Nil, err
	}
	ms := uint64(now().UnixMilli())
	for i := 0; i < 6; i++ {
		b[i] = byte(ms >> (40 - 8*i))
	}
	b[6] = (b[6] & 0x0f) | 0x70 // version 7
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	return uuid.FromBytes(b[:])
}

func (g Generator) NewString() (string, error) {
	u, err := g.New()
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// New returns a UUIDv7 from the wall clock.
func New() (uuid.UUID, error) { return Generator{}.New() }

func NewString() (string, error) { return Generator{}.NewString() }

// Timestamp recovers the millisecond timestamp embedded in a UUIDv7.
func Timestamp(u uuid.UUID) time.Time {
	var ms int64
	for i := 0; i < 6; i++ {
		ms = ms<<8 | int64(u[i])
	}
	return time.UnixMilli(ms).UTC()
}
