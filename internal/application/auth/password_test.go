package auth

import "testing"

func TestIsPasswordStrong(t *testing.T) {
	cases := []struct {
		password string
		strong   bool
	}{
		{"Password1", true},
		{"aB3aB3aB3", true},
		{"short1A", false},      // under 8 chars
		{"password1", false},    // no uppercase
		{"PASSWORD1", false},    // no lowercase
		{"Passwordx", false},    // no digit
		{"", false},
		{"Pässwörd1", true},
	}
	for _, tc := range cases {
		if got := IsPasswordStrong(tc.password); got != tc.strong {
			t.Errorf("IsPasswordStrong(%q) = %v, want %v", tc.password, got, tc.strong)
		}
	}
}
