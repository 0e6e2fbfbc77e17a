package catalog

import "testing"

func TestLikeFold(t *testing.T) {
	tests := []struct {
		pattern string
		s       string
		want    bool
	}{
		{"School", "school", true},
		{"school", "School ", false},
		{"j%", "JEE", true},
		{"%ath", "Math", true},
		{"%ath", "Maths", false},
		{"J_E", "JEE", true},
		{"J_E", "JE", false},
		{"%", "", true},
		{"_", "", false},
		{"%%e%", "neet", true},
		{"n%t", "NEET", true},
		{"n%t", "NEETS", false},
		{`100\%`, "100%", true},
		{`100\%`, "1000", false},
		{`a\_b`, "a_b", true},
		{`a\_b`, "axb", false},
		{"ÉCOLE", "école", true},
		{"é_ole", "ÉCOLE", true},
		{"STRASSE", "straße", false},
	}

	for _, tt := range tests {
		if got := likeFold(tt.pattern, tt.s); got != tt.want {
			t.Errorf("likeFold(%q, %q) = %v, want %v", tt.pattern, tt.s, got, tt.want)
		}
	}
}

func TestFilterCacheKey_IgnoresCase(t *testing.T) {
	a := Filter{Exam: "JEE", Subject: "Physics"}.CacheKey("materials")
	b := Filter{Exam: "jee", Subject: "PHYSICS"}.CacheKey("materials")
	if a != b {
		t.Errorf("CacheKey() = %q and %q, want equal", a, b)
	}
	if a == (Filter{Exam: "j%"}).CacheKey("materials") {
		t.Error("patterns should not share a key with literals")
	}
}
