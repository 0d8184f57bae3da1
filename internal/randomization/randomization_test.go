package randomization

import (
	"math/rand"
	"testing"
)

func TestSampleExGaussianPositive(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		v := SampleExGaussian(r, 500, 50, 1.0/150.0, true)
		if v <= 0 {
			t.Fatalf("draw %d not positive: %f", i, v)
		}
	}
}

func TestSampleExGaussianCentersNearMeanPlusTail(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	sum := 0.0
	const n = 20000
	for i := 0; i < n; i++ {
		sum += SampleExGaussian(r, 500, 50, 1.0/150.0, true)
	}
	avg := sum / n
	// expected value is mean + 1/rate = 650
	if avg < 600 || avg > 700 {
		t.Fatalf("sample mean %f outside [600, 700]", avg)
	}
}

func TestPick(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	list := []string{"f", "j"}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		v := Pick(r, list)
		if v != "f" && v != "j" {
			t.Fatalf("picked %q, not a member", v)
		}
		seen[v] = true
	}
	if !seen["f"] || !seen["j"] {
		t.Fatalf("100 draws never produced both members: %v", seen)
	}
}

func TestLetter(t *testing.T) {
	r := rand.New(rand.NewSource(4))
	for i := 0; i < 100; i++ {
		v := Letter(r)
		if len(v) != 1 || v[0] < 'a' || v[0] > 'z' {
			t.Fatalf("letter draw %q out of range", v)
		}
	}
}
