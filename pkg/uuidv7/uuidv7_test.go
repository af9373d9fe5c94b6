package uuidv7

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestNew(t *testing.T) {
	u, err := New()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if u.Version() != 7 {
		t.Fatalf("expected version 7, got %d", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC4122 variant, got %v", u.Variant())
	}
}

func TestGenerator_UsesClock(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	g := Generator{Now: func() time.Time { return at }, Rand: bytes.NewReader(make([]byte, 32))}
	u, err := g.New()
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if got := Timestamp(u); !got.Equal(at) {
		t.Fatalf("got=%v want=%v", got, at)
	}
	if u.Version() != 7 {
		t.Fatalf("version=%d", u.Version())
	}
}

func TestGenerator_Ordered(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	first, _ := Generator{Now: func() time.Time { return base }}.NewString()
	second, _ := Generator{Now: func() time.Time { return base.Add(time.Millisecond) }}.NewString()
	if first >= second {
		t.Fatalf("first=%s second=%s", first, second)
	}
}

func TestNewString(t *testing.T) {
	got, err := NewString()
	if err != nil {
		t.Fatalf("expected nil err, got %v", err)
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected parseable uuid, got %v", err)
	}
}

func TestReadError(t *testing.T) {
	g := Generator{Rand: errReader{}}
	if _, err := g.New(); err == nil {
		t.Fatal("expected error")
	}
	if _, err := g.NewString(); err == nil {
		t.Fatal("expected error")
	}
}
