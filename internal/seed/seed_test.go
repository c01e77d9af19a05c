package seed

import "testing"

func TestDeriveIsDeterministic(t *testing.T) {
	a := Derive("octocat/hello-world")
	b := Derive("octocat/hello-world")

	for i := 0; i < 100; i++ {
		av, bv := a.Intn(1000), b.Intn(1000)
		if av != bv {
			t.Fatalf("draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestDifferentIdentitiesDiverge(t *testing.T) {
	a := Derive("octocat/hello-world")
	b := Derive("octocat/spoon-knife")

	same := true
	for i := 0; i < 20; i++ {
		if a.Intn(1_000_000) != b.Intn(1_000_000) {
			same = false
			break
		}
	}
	if same {
		t.Error("different identities produced identical draw sequences")
	}
}

func TestSubStreamsAreIndependent(t *testing.T) {
	a := Derive("octocat/hello-world")
	b := Derive("octocat/hello-world")

	// Drain draws from one parent; child streams must be unaffected.
	for i := 0; i < 50; i++ {
		a.Intn(10)
	}

	childA := a.Sub("rooms/src")
	childB := b.Sub("rooms/src")
	for i := 0; i < 50; i++ {
		av, bv := childA.Intn(1000), childB.Intn(1000)
		if av != bv {
			t.Fatalf("child draw %d diverged: %d != %d", i, av, bv)
		}
	}
}

func TestIntRangeBounds(t *testing.T) {
	s := Derive("bounds-test")
	for i := 0; i < 200; i++ {
		v := s.IntRange(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("IntRange(3, 7) = %d, out of bounds", v)
		}
	}
	if got := s.IntRange(5, 5); got != 5 {
		t.Errorf("IntRange(5, 5) = %d, want 5", got)
	}
}

func TestWeightedPickRespectsWeights(t *testing.T) {
	s := Derive("weighted-test")

	counts := make([]int, 3)
	for i := 0; i < 1000; i++ {
		idx := s.WeightedPick([]int{0, 1, 9})
		if idx < 0 || idx > 2 {
			t.Fatalf("WeightedPick returned out-of-range index %d", idx)
		}
		counts[idx]++
	}
	if counts[0] != 0 {
		t.Errorf("zero-weight entry selected %d times", counts[0])
	}
	if counts[2] <= counts[1] {
		t.Errorf("heavier entry picked less often: %d <= %d", counts[2], counts[1])
	}
}

func TestWeightedPickNoPositiveWeights(t *testing.T) {
	s := Derive("weighted-empty")
	if idx := s.WeightedPick([]int{0, 0}); idx != -1 {
		t.Errorf("expected -1 for all-zero weights, got %d", idx)
	}
	if idx := s.WeightedPick(nil); idx != -1 {
		t.Errorf("expected -1 for nil weights, got %d", idx)
	}
}

func TestPickEmpty(t *testing.T) {
	s := Derive("pick-empty")
	if got := s.Pick(nil); got != "" {
		t.Errorf("Pick(nil) = %q, want empty string", got)
	}
}
