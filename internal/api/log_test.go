package api

import (
	"testing"
)

func TestFormatLogLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Info",
			input: `time=2026-01-18T06:50:46.074+01:00 level=INFO msg="Dataset reloaded" origin="cctvmap/gta/locations.yaml" records=20 visible=18 component=reload`,
			want:  "06:50:46 Dataset reloaded (origin=cctvmap/gta/locations.yaml, records=20, visible=18)",
		},
		{
			name:  "WarnKeepsLevel",
			input: `time=2026-01-18T06:50:46.074+01:00 level=WARN msg="Failed to read message" error="dial tcp 127.0.0.1:9092: connect: connection refused"`,
			want:  "06:50:46 [WARN] Failed to read message",
		},
		{
			name:  "NotStructured",
			input: "plain text line",
			want:  "plain text line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatLogLine(tt.input); got != tt.want {
				t.Errorf("formatLogLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
