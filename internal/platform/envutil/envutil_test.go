package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"30", 30 * time.Second},
		{"168h", 168 * time.Hour},
		{"-5", time.Minute},
		{"soon", time.Minute},
	}
	for _, tc := range cases {
		t.Setenv("SHEETSHARE_TEST_DURATION", tc.raw)
		if got := Duration("SHEETSHARE_TEST_DURATION", time.Minute); got != tc.want {
			t.Fatalf("Duration(%q): want=%s got=%s", tc.raw, tc.want, got)
		}
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("SHEETSHARE_TEST_BOOL", "on")
	if !Bool("SHEETSHARE_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	t.Setenv("SHEETSHARE_TEST_BOOL", "maybe")
	if Bool("SHEETSHARE_TEST_BOOL", false) {
		t.Fatalf("Bool: unparseable value should fall back to default")
	}
	t.Setenv("SHEETSHARE_TEST_INT", "x")
	if got := Int("SHEETSHARE_TEST_INT", 60); got != 60 {
		t.Fatalf("Int: want=60 got=%d", got)
	}
}
