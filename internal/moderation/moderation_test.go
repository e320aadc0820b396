package moderation

import "testing"

func TestBlockedPlainAndObfuscated(t *testing.T) {
	f := New()

	cases := []struct {
		text    string
		blocked bool
	}{
		{"what the fuck is this", true},
		{"fuuuuckkk this", true},
		{"FUCK", true},
		{"where can I buy meth", true},
		{"i will kill   you", true},
		{"nursing jobs in eureka", false},
		{"part time retail work", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := f.Blocked(tc.text); got != tc.blocked {
			t.Fatalf("Blocked(%q) = %v, want %v", tc.text, got, tc.blocked)
		}
	}
}

func TestRedirectMessageIsFromFixedSet(t *testing.T) {
	f := New()
	f.pick = func(int) int { return 0 }

	if got := f.RedirectMessage(); got != redirectMessages[0] {
		t.Fatalf("unexpected redirect message: %q", got)
	}

	f.pick = func(n int) int { return n - 1 }
	if got := f.RedirectMessage(); got != redirectMessages[len(redirectMessages)-1] {
		t.Fatalf("unexpected redirect message: %q", got)
	}
}
