package result

import "testing"

func TestTier_String(t *testing.T) {
	tests := []struct {
		tier Tier
		want string
	}{
		{TierNone, "none"},
		{TierKeyword, "keyword"},
		{TierCombination, "combination"},
		{TierExact, "exact"},
		{Tier(42), "none"},
	}
	for _, tc := range tests {
		if got := tc.tier.String(); got != tc.want {
			t.Errorf("Tier(%d).String() = %q, want %q", tc.tier, got, tc.want)
		}
	}
}

func TestTier_Ordering(t *testing.T) {
	if !(TierExact > TierCombination && TierCombination > TierKeyword && TierKeyword > TierNone) {
		t.Fatal("tiers must be strictly ordered exact > combination > keyword > none")
	}
}
