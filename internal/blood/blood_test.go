package blood

import "testing"

func TestParseGroupRoundTrip(t *testing.T) {
	t.Parallel()

	for _, group := range Groups() {
		if !group.Valid() {
			t.Errorf("group %v reported invalid", group)
		}
		if got := ParseGroup(group.Label()); got != group {
			t.Errorf("ParseGroup(%q) = %v, want %v", group.Label(), got, group)
		}
	}
}

func TestParseGroupUnknown(t *testing.T) {
	t.Parallel()

	if got := ParseGroup("C+"); got != GroupUnspecified {
		t.Fatalf("ParseGroup unknown = %v, want GroupUnspecified", got)
	}
	if got := ParseGroup(" o- "); got != GroupONegative {
		t.Fatalf("ParseGroup with whitespace/case = %v, want GroupONegative", got)
	}
	if GroupUnspecified.Valid() {
		t.Fatal("unspecified group reported valid")
	}
}
