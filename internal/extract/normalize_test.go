package extract

import (
	"testing"
	"time"
)

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain digits", in: "42", want: "42"},
		{name: "whitespace trimmed", in: " 5 ", want: "5"},
		{name: "empty defaults to zero", in: "", want: "0"},
		{name: "whole thousands", in: "12k", want: "12000"},
		// The source degrades "k" to a literal "000" suffix instead of
		// multiplying; that substitution is part of the observable output.
		{name: "decimal thousands keeps substitution", in: "1.2k", want: "1.2000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeCount(tt.in); got != tt.want {
				t.Errorf("NormalizeCount(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSourceTime(t *testing.T) {
	got, err := parseSourceTime("2024-03-01 16:45:12Z")
	if err != nil {
		t.Fatalf("parseSourceTime() error = %v", err)
	}

	want := time.Date(2024, 3, 1, 16, 45, 12, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseSourceTime() = %v, want %v", got, want)
	}
}

func TestParseSourceTime_Invalid(t *testing.T) {
	if _, err := parseSourceTime("3 hours ago"); err == nil {
		t.Error("parseSourceTime() expected error for relative text")
	}
}
