package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSplitFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"svg", []string{"svg"}},
		{"svg,png,md", []string{"svg", "png", "md"}},
		{" svg , png ", []string{"svg", "png"}},
		{"svg,,png", []string{"svg", "png"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := splitFormats(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitFormats(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitFormats(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		base, format, want string
	}{
		{"map1", "svg", "map1.svg"},
		{"out/diagram", "png", "out/diagram.png"},
		{"diagram.svg", "svg", "diagram.svg"},
		{"diagram.svg", "png", "diagram.svg.png"},
		{"notes.md", "md", "notes.md"},
	}

	for _, tt := range tests {
		if got := artifactPath(tt.base, tt.format); got != tt.want {
			t.Errorf("artifactPath(%q, %q) = %q, want %q", tt.base, tt.format, got, tt.want)
		}
	}
}

func TestWriteArtifactCreatesParents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "map.svg")

	if err := writeArtifact(path, []byte("<svg/>")); err != nil {
		t.Fatalf("writeArtifact: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("file content = %q", data)
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "format", "formats"); got != "format" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(3, "format", "formats"); got != "formats" {
		t.Errorf("plural(3) = %q", got)
	}
	if got := plural(0, "entry", "entries"); got != "entries" {
		t.Errorf("plural(0) = %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "—"},
		{"minutes", now.Add(-30 * time.Minute), "30m ago"},
		{"hours", now.Add(-5 * time.Hour), "5h ago"},
		{"days", now.Add(-3 * 24 * time.Hour), "3d ago"},
		{"old", time.Date(2023, time.March, 14, 12, 0, 0, 0, time.UTC), "Mar 14, 2023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime = %q, want %q", got, tt.want)
			}
		})
	}
}
