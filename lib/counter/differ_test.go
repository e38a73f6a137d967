package counter

import (
	"math/rand"
	"testing"
)

func TestClamp(t *testing.T) {
	if diff := Clamp(200, 100); diff != 100 {
		t.Errorf(`unexpected diff: %d`, diff)
	}

	if diff := Clamp(50, 200); diff != 0 {
		t.Errorf(`unexpected diff after a counter reset: %d`, diff)
	}
}

func TestFirstSampleIsZero(t *testing.T) {
	d := NewDiffer()

	if delta := d.Sample("Questions", 123456789); delta != 0 {
		t.Errorf(`first sample returned %d, not 0`, delta)
	}
	if !d.Has("Questions") {
		t.Error(`first sample did not store a baseline`)
	}
	if delta := d.Sample("Questions", 123456800); delta != 11 {
		t.Errorf(`unexpected delta: %d`, delta)
	}
}

func TestSeededFirstDelta(t *testing.T) {
	d := NewDiffer()
	d.Seed("Innodb_rows_read", 1000000)

	// the first displayed delta is the interval, never the historical total
	if delta := d.Sample("Innodb_rows_read", 1000250); delta != 250 {
		t.Errorf(`unexpected first delta: %d`, delta)
	}
}

func TestNamesAreIndependent(t *testing.T) {
	d := NewDiffer()
	d.Seed("a", 10)
	d.Seed("b", 1000)

	if delta := d.Sample("a", 15); delta != 5 {
		t.Errorf(`unexpected delta for a: %d`, delta)
	}
	if delta := d.Sample("b", 1001); delta != 1 {
		t.Errorf(`unexpected delta for b: %d`, delta)
	}
}

func TestResetForgetsBaselines(t *testing.T) {
	d := NewDiffer()
	d.Seed("a", 10)
	d.Reset()

	if d.Has("a") {
		t.Error(`baseline survived Reset`)
	}
	if delta := d.Sample("a", 50); delta != 0 {
		t.Errorf(`unexpected delta after reset: %d`, delta)
	}
}

// delta_i = max(0, v_i - v_i-1) over random sequences with resets
func TestDeltaProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 100; run++ {
		d := NewDiffer()
		v := rng.Int63n(1 << 40)
		d.Seed("c", v)
		prev := v

		for i := 0; i < 50; i++ {
			if rng.Intn(10) == 0 {
				v = rng.Int63n(1000) // reset
			} else {
				v += rng.Int63n(100000)
			}

			want := v - prev
			if want < 0 {
				want = 0
			}
			if got := d.Sample("c", v); got != want {
				t.Fatalf(`run %d step %d: delta %d, want %d`, run, i, got, want)
			}
			if got := d.Sample("c", v); got != 0 {
				t.Fatalf(`run %d step %d: repeated sample gave %d`, run, i, got)
			}
			prev = v
		}
	}
}
