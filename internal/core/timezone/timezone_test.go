package timezone

import (
	"testing"
	"time"
)

func TestFormatForUser(t *testing.T) {
	f := MustNew("Europe/Madrid")

	// 夏令时 UTC+2
	summer := time.Date(2024, 7, 1, 10, 30, 5, 0, time.UTC)
	if got, want := f.FormatForUser(summer), "01/07/2024 12:30:05"; got != want {
		t.Errorf("summer: got %q, want %q", got, want)
	}

	// 冬令时 UTC+1
	winter := time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC)
	if got, want := f.FormatForUser(winter), "16/01/2024 00:00:00"; got != want {
		t.Errorf("winter: got %q, want %q", got, want)
	}
}

func TestISOAndString(t *testing.T) {
	f := MustNew("Europe/Madrid")
	ts := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)

	if got, want := f.ISO(ts), "2024-01-15T09:00:00+01:00"; got != want {
		t.Errorf("ISO: got %q, want %q", got, want)
	}
	if got, want := f.String(ts), "2024-01-15 09:00:00"; got != want {
		t.Errorf("String: got %q, want %q", got, want)
	}
}

func TestNewDefaultsAndErrors(t *testing.T) {
	f, err := New("")
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if f.Name() != DefaultZone {
		t.Errorf("expected default zone %q, got %q", DefaultZone, f.Name())
	}

	if _, err := New("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestNowAndInfo(t *testing.T) {
	f := MustNew("UTC")
	fixed := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return fixed }

	if !f.Now().Equal(fixed) {
		t.Errorf("Now: got %v, want %v", f.Now(), fixed)
	}
	info := f.Info()
	if info.Timezone != "UTC" || info.Local != "09/03/2025 12:00:00" || info.Offset != "+00:00" {
		t.Errorf("unexpected info: %+v", info)
	}
}
