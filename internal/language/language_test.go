package language

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"ko-KR", "ko", true},
		{"korean", "ko", true},
		{"EN", "en", true},
		{"pt-BR", "pt", true},
		{"", "", false},
		{"not a tag", "", false},
	}
	for _, tc := range cases {
		got, ok := Normalize(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Normalize(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"en":     "English",
		"ko":     "Korean",
		"ja-JP":  "Japanese",
		"":       "English",
		"xx-lol": "xx-lol",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
