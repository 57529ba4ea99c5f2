package sortlib

import (
	"errors"
	"math"
	"testing"

	sorterrors "github.com/tamirms/sortlib/errors"
)

func TestRecordKeyIsBigEndian(t *testing.T) {
	var r Record
	copy(r[:], []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0xFF, 0xFF})
	if got, want := r.Key(), Key(0x0102030405060708); got != want {
		t.Fatalf("Key() = %#x, want %#x", got, want)
	}

	r = recordWithKey(math.MaxUint64, 7, 0)
	if got := r.Key(); got != math.MaxUint64 {
		t.Fatalf("Key() = %#x, want MaxUint64", got)
	}
}

// TestCompareUsesFullHeader verifies that the two bytes after the key break
// ties and that body bytes never influence order.
func TestCompareUsesFullHeader(t *testing.T) {
	tests := []struct {
		name string
		a, b Record
		want int
	}{
		{"smaller_key", recordWithKey(1, 9, 0), recordWithKey(2, 0, 0), -1},
		{"larger_key", recordWithKey(1<<40, 0, 0), recordWithKey(1<<39, 0xFFFF, 0), 1},
		{"tie_break_low", recordWithKey(5, 1, 0), recordWithKey(5, 2, 0), -1},
		{"tie_break_high", recordWithKey(5, 0x0100, 0), recordWithKey(5, 0x00FF, 0), 1},
		{"body_ignored", recordWithKey(5, 3, 1), recordWithKey(5, 3, 2), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Compare(&tc.a, &tc.b); got != tc.want {
				t.Errorf("Compare = %d, want %d", got, tc.want)
			}
			if got := Less(&tc.a, &tc.b); got != (tc.want < 0) {
				t.Errorf("Less = %v, want %v", got, tc.want < 0)
			}
		})
	}
}

// TestCompareAgreesWithKey checks that header order never contradicts
// numeric key order.
func TestCompareAgreesWithKey(t *testing.T) {
	rng := newTestRNG(t)
	recs := randomRecords(rng, 2000)
	for i := 1; i < len(recs); i++ {
		a, b := &recs[i-1], &recs[i]
		if a.Key() < b.Key() && Compare(a, b) >= 0 {
			t.Fatalf("key %#x < %#x but Compare >= 0", a.Key(), b.Key())
		}
		if a.Key() > b.Key() && Compare(a, b) <= 0 {
			t.Fatalf("key %#x > %#x but Compare <= 0", a.Key(), b.Key())
		}
	}
}

func TestAsRecordsRoundTrip(t *testing.T) {
	buf := make([]byte, 3*RecordSize)
	for i := range buf {
		buf[i] = byte(i)
	}
	recs, err := AsRecords(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("len = %d, want 3", len(recs))
	}
	if recs[1][0] != byte(RecordSize) {
		t.Errorf("recs[1][0] = %d, want %d", recs[1][0], byte(RecordSize))
	}

	// The view aliases the buffer.
	recs[2][5] = 0xAB
	if buf[2*RecordSize+5] != 0xAB {
		t.Error("AsRecords copied the buffer")
	}
	if back := RecordBytes(recs); &back[0] != &buf[0] || len(back) != len(buf) {
		t.Error("RecordBytes does not alias the original buffer")
	}
}

func TestAsRecordsRejectsPartialRecord(t *testing.T) {
	for _, n := range []int{1, 99, 101, 250} {
		if _, err := AsRecords(make([]byte, n)); !errors.Is(err, sorterrors.ErrRecordAlignment) {
			t.Errorf("AsRecords(%d bytes): got %v, want ErrRecordAlignment", n, err)
		}
	}
	recs, err := AsRecords(nil)
	if err != nil || len(recs) != 0 {
		t.Errorf("AsRecords(nil) = %d records, %v", len(recs), err)
	}
	if RecordBytes(nil) != nil {
		t.Error("RecordBytes(nil) should be nil")
	}
}
