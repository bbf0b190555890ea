package poses

import "testing"

func TestMatchSupported(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Tree Pose", "Tree", true},
		{"tree", "Tree", true},
		{"Child's Pose", "Child", true},
		{"Warrior Pose", "Warrior", true},
		{"Eagle Pose", "", false},
		{"", "", false},
		{"  ", "", false},
	}
	for _, tc := range cases {
		got, ok := MatchSupported(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("MatchSupported(%q) = %q/%v, want %q/%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestClassIndexCoversCatalog(t *testing.T) {
	for _, p := range All() {
		if _, ok := ClassIndex[p]; !ok {
			t.Fatalf("pose %q missing from class index", p)
		}
	}
}

func TestTierBoundaries(t *testing.T) {
	cases := []struct {
		pct     int
		tier    Tier
		correct bool
	}{
		{98, TierPerfect, true},
		{97, TierCorrect, true},
		{81, TierCorrect, true},
		{80, TierNear, false},
		{61, TierNear, false},
		{60, TierOff, false},
		{0, TierOff, false},
	}
	for _, tc := range cases {
		tier, color := TierFor(tc.pct)
		if tier != tc.tier {
			t.Fatalf("TierFor(%d) = %s, want %s", tc.pct, tier, tc.tier)
		}
		if tier.Correct() != tc.correct {
			t.Fatalf("Tier(%d).Correct() = %v, want %v", tc.pct, tier.Correct(), tc.correct)
		}
		if color == "" {
			t.Fatalf("TierFor(%d) returned empty color", tc.pct)
		}
	}
}

func TestIsAISupported(t *testing.T) {
	if !IsAISupported("Traingle") {
		t.Fatal("the trained class label Traingle must stay AI supported")
	}
	if IsAISupported("Plank") {
		t.Fatal("Plank is manual only")
	}
	if !IsSupported("Plank") {
		t.Fatal("Plank belongs to the catalog")
	}
}
