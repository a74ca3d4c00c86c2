package unicodeindex

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var strategies = []SearchStrategy{LinearSearch, BinarySearch}

func mustOpenFixture(t *testing.T, file string, opts ...Option) *UnicodeIndex {
	t.Helper()
	ui, err := Open(filepath.Join("testdata", file), opts...)
	if err != nil {
		t.Fatalf("cannot open fixture %s: %v", file, err)
	}
	t.Cleanup(func() { ui.Close() })
	return ui
}

func mustWriteFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("cannot write %s: %v", path, err)
	}
	return path
}

func TestHelloWorld(t *testing.T) {
	path := mustWriteFile(t, "Hello\nworld!\n")
	for _, strategy := range strategies {
		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}
		ui, err := New(f, WithSearch(strategy))
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range "Hello\nworld!\n" {
			got, err := ui.CharacterAt(i)
			if err != nil {
				t.Fatalf("%s: CharacterAt(%d) failed: %v", strategy, i, err)
			}
			if got != want {
				t.Fatalf("%s: CharacterAt(%d) = %q, want %q", strategy, i, got, want)
			}
		}
		if _, err := ui.CharacterAt(13); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("%s: CharacterAt(13) should be out of bounds, is %v", strategy, err)
		}
		want := []Checkpoint{{0, 0}, {6, 6}, {13, 13}}
		if cps := ui.Checkpoints(); !reflect.DeepEqual(cps, want) {
			t.Fatalf("%s: checkpoints = %v, want %v", strategy, cps, want)
		}
		if err := ui.Close(); err != nil {
			t.Fatalf("%s: Close failed: %v", strategy, err)
		}
	}
}

func TestScenarioLookups(t *testing.T) {
	tests := []struct {
		index int
		want  rune
	}{
		{0, 'H'}, {4, 'o'}, {5, '\n'}, {6, 'w'}, {11, '!'}, {12, '\n'},
	}
	for _, strategy := range strategies {
		ui := FromBytes("scenario", []byte("Hello\nworld!\n"), WithSearch(strategy))
		for _, tt := range tests {
			if got, err := ui.CharacterAt(tt.index); err != nil || got != tt.want {
				t.Fatalf("%s: CharacterAt(%d) = %q, %v; want %q", strategy, tt.index, got, err, tt.want)
			}
		}
		if _, err := ui.CharacterAt(13); !errors.Is(err, ErrOutOfBounds) {
			t.Fatalf("%s: expected out of bounds, got %v", strategy, err)
		}
	}
}

func TestCharacterAfterLineFeed(t *testing.T) {
	ui := FromBytes("lines", []byte("a\nb\n\nc"))
	if _, err := ui.CharacterAt(5); err != nil { // fill the cache
		t.Fatal(err)
	}
	for i, want := range []rune("a\nb\n\nc") {
		if got, err := ui.CharacterAt(i); err != nil || got != want {
			t.Fatalf("CharacterAt(%d) = %q, %v; want %q", i, got, err, want)
		}
	}
	want := []Checkpoint{{0, 0}, {2, 2}, {4, 4}, {5, 5}}
	if cps := ui.Checkpoints(); !reflect.DeepEqual(cps, want) {
		t.Fatalf("checkpoints = %v, want %v", cps, want)
	}
}

func TestEmptyBuffer(t *testing.T) {
	ui := FromBytes("empty", nil)
	if _, err := ui.CharacterAt(0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for empty buffer, got %v", err)
	}
	path := mustWriteFile(t, "")
	ui, err := Open(path)
	if err != nil {
		t.Fatalf("empty file should be accepted, got %v", err)
	}
	defer ui.Close()
	if _, err := ui.CharacterAt(0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for empty file, got %v", err)
	}
}

func TestNegativeIndex(t *testing.T) {
	ui := FromBytes("negative", []byte("abc"))
	if _, err := ui.CharacterAt(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds for negative index, got %v", err)
	}
}

func TestInvalidUTF8(t *testing.T) {
	for _, strategy := range strategies {
		ui := FromBytes("invalid", []byte("ab\nc\xE2\x82"), WithSearch(strategy))
		for i, want := range "ab\nc" {
			if got, err := ui.CharacterAt(i); err != nil || got != want {
				t.Fatalf("%s: CharacterAt(%d) = %q, %v; want %q", strategy, i, got, err, want)
			}
		}
		_, err := ui.CharacterAt(4)
		if !errors.Is(err, ErrInvalidChar) {
			t.Fatalf("%s: expected invalid char, got %v", strategy, err)
		}
		var ierr *InvalidCharError
		if !errors.As(err, &ierr) {
			t.Fatalf("%s: expected *InvalidCharError, got %T", strategy, err)
		}
		if ierr.Index != 4 || ierr.Offset != 4 || !ierr.Err.Incomplete() {
			t.Fatalf("%s: unexpected error details %+v / %v", strategy, ierr, ierr.Err)
		}
		if _, err := ui.CharacterAt(40); !errors.Is(err, ErrInvalidChar) {
			t.Fatalf("%s: index behind malformed bytes should fail as invalid, got %v", strategy, err)
		}
		// the index remains usable
		if got, err := ui.CharacterAt(3); err != nil || got != 'c' {
			t.Fatalf("%s: CharacterAt(3) after error = %q, %v", strategy, got, err)
		}
	}
}

func TestMalformedBytesBehindTargetAreIgnored(t *testing.T) {
	ui := FromBytes("tail", []byte("xyz\xFF"))
	if got, err := ui.CharacterAt(2); err != nil || got != 'z' {
		t.Fatalf("CharacterAt(2) = %q, %v; want 'z'", got, err)
	}
}

func TestFailedExtensionKeepsCheckpoints(t *testing.T) {
	ui := FromBytes("partial", []byte("a\nb\n\xFFc"))
	if _, err := ui.CharacterAt(5); !errors.Is(err, ErrInvalidChar) {
		t.Fatalf("expected invalid char, got %v", err)
	}
	want := []Checkpoint{{0, 0}, {2, 2}, {4, 4}}
	if cps := ui.Checkpoints(); !reflect.DeepEqual(cps, want) {
		t.Fatalf("checkpoints = %v, want %v", cps, want)
	}
	if got, err := ui.CharacterAt(2); err != nil || got != 'b' {
		t.Fatalf("CharacterAt(2) = %q, %v; want 'b'", got, err)
	}
}

func TestIdempotence(t *testing.T) {
	text := "Zwölf Boxkämpfer\njagen Viktor\nquer über den großen Sylter Deich.\n"
	runes := []rune(text)
	ui := FromBytes("idempotence", []byte(text))
	for _, i := range []int{5, 2, 9, 5, 2, 9, 40, 9, 17, 16, 17} {
		got, err := ui.CharacterAt(i)
		if err != nil {
			t.Fatalf("CharacterAt(%d) failed: %v", i, err)
		}
		if got != runes[i] {
			t.Fatalf("CharacterAt(%d) = %q, want %q", i, got, runes[i])
		}
	}
}

func TestRandomOrderMatchesSequential(t *testing.T) {
	var sb strings.Builder
	words := []string{"alpha", "βήτα", "гамма", "δέλτα", "エ", "😀😁", "", "x"}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 400; i++ {
		sb.WriteString(words[rnd.Intn(len(words))])
		if rnd.Intn(3) == 0 {
			sb.WriteByte('\n')
		} else {
			sb.WriteByte(' ')
		}
	}
	text := sb.String()
	runes := []rune(text)
	queries := make([]int, 2000)
	for i := range queries {
		queries[i] = rnd.Intn(len(runes) + 10)
	}
	for _, strategy := range strategies {
		ordered := FromBytes("ordered", []byte(text), WithSearch(strategy))
		shuffled := FromBytes("shuffled", []byte(text), WithSearch(strategy))
		for i := 0; i < len(runes)+10; i++ {
			r, err := ordered.CharacterAt(i)
			if i >= len(runes) {
				if !errors.Is(err, ErrOutOfBounds) {
					t.Fatalf("%s: CharacterAt(%d) should be out of bounds, is %v", strategy, i, err)
				}
				continue
			}
			if err != nil || r != runes[i] {
				t.Fatalf("%s: CharacterAt(%d) = %q, %v; want %q", strategy, i, r, err, runes[i])
			}
		}
		for _, i := range queries {
			got, gerr := shuffled.CharacterAt(i)
			want, werr := ordered.CharacterAt(i)
			if got != want || errors.Is(gerr, ErrOutOfBounds) != errors.Is(werr, ErrOutOfBounds) {
				t.Fatalf("%s: random access at %d = %q, %v; sequential %q, %v", strategy, i, got, gerr, want, werr)
			}
		}
		if !reflect.DeepEqual(ordered.Checkpoints(), shuffled.Checkpoints()) {
			t.Fatalf("%s: checkpoint caches differ", strategy)
		}
	}
}

func TestStats(t *testing.T) {
	ui := FromBytes("stats", []byte("ä\nö\nü"), WithSearch(LinearSearch))
	stats := ui.Stats()
	if stats.Strategy != "linear" || stats.Checkpoints != 1 || stats.Exhausted {
		t.Fatalf("unexpected initial stats %+v", stats)
	}
	if _, err := ui.CharacterAt(2); err != nil {
		t.Fatal(err)
	}
	stats = ui.Stats()
	if stats.Checkpoints != 2 || stats.CoveredBytes != 3 || stats.CoveredChars != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if _, err := ui.CharacterAt(10); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	stats = ui.Stats()
	if !stats.Exhausted || stats.TotalChars != 5 || stats.Size != 8 {
		t.Fatalf("unexpected final stats %+v", stats)
	}
	if c := stats.Coverage(); c <= 0 || c > 1 {
		t.Fatalf("expected coverage in (0,1], got %f", c)
	}
	if got, err := ui.CharacterAt(4); err != nil || got != 'ü' {
		t.Fatalf("CharacterAt(4) = %q, %v; want 'ü'", got, err)
	}
}

func TestClose(t *testing.T) {
	path := mustWriteFile(t, "abc")
	ui, err := Open(path, WithIdentifier("closing"))
	if err != nil {
		t.Fatal(err)
	}
	if ui.Identifier != "closing" {
		t.Fatalf("unexpected identifier %q", ui.Identifier)
	}
	if ui.Size() != 3 {
		t.Fatalf("unexpected size %d", ui.Size())
	}
	if err := ui.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := ui.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if _, err := ui.CharacterAt(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}
}

func TestConstructionErrors(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected mapping error for nil file, got %v", err)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "does-not-exist.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	d, err := os.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if _, err := New(d); !errors.Is(err, ErrMapping) {
		t.Fatalf("expected mapping error for directory, got %v", err)
	}
}

func TestFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "mixed.txt"))
	if err != nil {
		t.Fatalf("cannot read fixture: %v", err)
	}
	runes := []rune(string(data))
	ui := mustOpenFixture(t, "mixed.txt")
	for i := len(runes) - 1; i >= 0; i -= 7 { // backwards, in strides
		if got, err := ui.CharacterAt(i); err != nil || got != runes[i] {
			t.Fatalf("CharacterAt(%d) = %q, %v; want %q", i, got, err, runes[i])
		}
	}
	for i, want := range runes {
		if got, err := ui.CharacterAt(i); err != nil || got != want {
			t.Fatalf("CharacterAt(%d) = %q, %v; want %q", i, got, err, want)
		}
	}
	if _, err := ui.CharacterAt(len(runes)); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected out of bounds at end of fixture, got %v", err)
	}
}
