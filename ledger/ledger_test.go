package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(Options{
		InMemory: true,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestPutLookup(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	if _, err := l.Lookup(ctx, "abc", "f1", "rag"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup on empty ledger = %v, want ErrNotFound", err)
	}

	rec := Record{
		Input:       "songs/rag.mid",
		Name:        "rag",
		Output:      "rag tempo95.png",
		Digest:      "abc",
		Fingerprint: "f1",
		Tempo:       95,
		Height:      12000,
		Holes:       431,
		RunID:       "run-1",
		RenderedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Elapsed:     1500 * time.Millisecond,
	}
	if err := l.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := l.Lookup(ctx, "abc", "f1", "rag")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !got.RenderedAt.Equal(rec.RenderedAt) {
		t.Fatalf("RenderedAt = %v, want %v", got.RenderedAt, rec.RenderedAt)
	}
	got.RenderedAt = rec.RenderedAt
	if got != rec {
		t.Fatalf("Lookup = %+v, want %+v", got, rec)
	}

	if _, err := l.Lookup(ctx, "abc", "f2", "rag"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other fingerprint = %v, want ErrNotFound", err)
	}
	if _, err := l.Lookup(ctx, "abc", "f1", "rag copy"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("same content under another name = %v, want ErrNotFound", err)
	}
}

func TestPutRequiresDigest(t *testing.T) {
	l := newTestLedger(t)
	if err := l.Put(context.Background(), Record{Output: "x.png"}); err == nil {
		t.Fatal("expected error for record without digest")
	}
}

func TestForgetAndRecords(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t)

	for _, r := range []Record{
		{Digest: "aa", Fingerprint: "f1", Name: "a", Output: "a1.png"},
		{Digest: "aa", Fingerprint: "f2", Name: "a", Output: "a2.png"},
		{Digest: "aa", Fingerprint: "f1", Name: "a2", Output: "a3.png"},
		{Digest: "ab", Fingerprint: "f1", Name: "b", Output: "b.png"},
	} {
		if err := l.Put(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := l.Forget(ctx, "aa")
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if n != 3 {
		t.Fatalf("Forget removed %d records, want 3", n)
	}

	var outputs []string
	for rec, err := range l.Records(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, rec.Output)
	}
	if len(outputs) != 1 || outputs[0] != "b.png" {
		t.Fatalf("records after Forget = %v, want [b.png]", outputs)
	}
}

func TestDigest(t *testing.T) {
	a := Digest([]byte("MThd"))
	if a != Digest([]byte("MThd")) {
		t.Fatal("digest not stable")
	}
	if a == Digest([]byte("MThe")) {
		t.Fatal("different content, same digest")
	}
	if len(a) != 64 {
		t.Fatalf("digest length = %d", len(a))
	}
}

func TestFingerprint(t *testing.T) {
	type offset struct {
		Start, End float64
	}
	type settings struct {
		DPI     int
		Pedals  map[int]int
		Offsets map[int]offset
		Names   []string
		skipped int
	}
	newSettings := func() settings {
		s := settings{
			DPI:     300,
			Pedals:  map[int]int{},
			Offsets: map[int]offset{},
			Names:   []string{"a", "b"},
		}
		for k := range 64 {
			s.Pedals[k] = k * 3
			s.Offsets[k+100] = offset{Start: float64(k) / 8, End: -float64(k) / 8}
		}
		return s
	}

	want, err := Fingerprint(newSettings())
	if err != nil {
		t.Fatal(err)
	}
	for range 200 {
		got, err := Fingerprint(newSettings())
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("equal settings fingerprint %s vs %s", got, want)
		}
	}

	hidden := newSettings()
	hidden.skipped = 7
	if got, _ := Fingerprint(hidden); got != want {
		t.Error("unexported field changed the fingerprint")
	}

	tests := map[string]func(*settings){
		"dpi":          func(s *settings) { s.DPI = 200 },
		"map value":    func(s *settings) { s.Pedals[10] = 0 },
		"extra key":    func(s *settings) { s.Pedals[500] = 1 },
		"nested value": func(s *settings) { s.Offsets[100] = offset{Start: 1} },
		"slice order":  func(s *settings) { s.Names = []string{"b", "a"} },
	}
	for name, modify := range tests {
		s := newSettings()
		modify(&s)
		if got, _ := Fingerprint(s); got == want {
			t.Errorf("%s: changed settings kept the fingerprint", name)
		}
	}
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Fatal("expected error without a directory")
	}
}
