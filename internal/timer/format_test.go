package timer

import "testing"

func TestFormatClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00:00"},
		{59, "0:00:59"},
		{60, "0:01:00"},
		{3599, "0:59:59"},
		{3661, "1:01:01"},
		{-90, "-0:01:30"},
	}
	for _, tc := range cases {
		if got := FormatClock(tc.seconds); got != tc.want {
			t.Errorf("FormatClock(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatStepClock(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{75, "01:15"},
		{600, "10:00"},
		// Hours fold into minutes: a 65-minute step reads 65:00.
		{3900, "65:00"},
		{-30, "-00:30"},
	}
	for _, tc := range cases {
		if got := FormatStepClock(tc.seconds); got != tc.want {
			t.Errorf("FormatStepClock(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatShort(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0m 0s"},
		{90, "1m 30s"},
		{3900, "65m 0s"},
		{-45, "-0m 45s"},
	}
	for _, tc := range cases {
		if got := FormatShort(tc.seconds); got != tc.want {
			t.Errorf("FormatShort(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestFormatNatural(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0秒"},
		{45, "45秒"},
		{60, "1分"},
		{90, "1分30秒"},
		{180, "3分"},
		{-90, "1分30秒"}, // callers pass magnitudes; sign is dropped
		{89.6, "1分30秒"}, // rounds before splitting
	}
	for _, tc := range cases {
		if got := FormatNatural(tc.seconds); got != tc.want {
			t.Errorf("FormatNatural(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
