package languages

import "testing"

func TestNameKnownCode(t *testing.T) {
	if got := Name("eng"); got != "English" {
		t.Errorf("Name(eng) = %q, want English", got)
	}
	if got := Name("jpn"); got != "Japanese" {
		t.Errorf("Name(jpn) = %q, want Japanese", got)
	}
}

func TestNameUnknownCodeEchoesInput(t *testing.T) {
	if got := Name("xyz"); got != "xyz" {
		t.Errorf("Name(xyz) = %q, want xyz", got)
	}
}
