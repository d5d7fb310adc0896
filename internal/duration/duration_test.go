package duration

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		token string
		want  time.Duration
	}{
		{"45s", 45 * time.Second},
		{"10m", 10 * time.Minute},
		{"2h", 2 * time.Hour},
		{"2d", 172800 * time.Second},
		{"1w", 7 * 24 * time.Hour},
		{"0s", 0},
		{"3H", 3 * time.Hour},
	}

	for _, tc := range cases {
		got, err := Parse(tc.token)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.token, err)
		}
		if got != tc.want {
			t.Fatalf("parse %q: got %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, token := range []string{"", "5", "5x", "d5", "m", "-5m", "1.5h", "h1d"} {
		if _, err := Parse(token); !errors.Is(err, ErrInvalid) {
			t.Fatalf("parse %q: expected ErrInvalid, got %v", token, err)
		}
	}
}
