package errors

import (
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "6f1c8a4e-0f6a-4c22-9f7a-cf3b9a2f51d0", false},
		{"valid short", "n1", false},
		{"valid with underscore", "node_7", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"path traversal", "../secrets", true},
		{"slash", "maps/other", true},
		{"backslash", "maps\\other", true},
		{"null byte", "id\x00", true},
		{"control char", "id\x01", true},
		{"newline", "id\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Project roadmap", false},
		{"valid with tab", "before\tafter", false},
		{"valid unicode", "Überblick 地図", false},

		{"empty", "", true},
		{"too long", strings201(), true},
		{"newline", "line\nbreak", true},
		{"null byte", "bad\x00title", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func strings201() string {
	b := make([]byte, 201)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", "#a1b2c3", false},
		{"valid uppercase", "#FFEE00", false},
		{"valid white", "#ffffff", false},

		{"empty", "", true},
		{"no hash", "a1b2c3", true},
		{"short form", "#abc", true},
		{"eight digits", "#a1b2c3d4", true},
		{"non-hex chars", "#gghhii", true},
		{"named color", "red", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHexColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid http", "http://localhost:8080", false},
		{"valid https", "https://maps.example.com", false},

		{"empty", "", true},
		{"no scheme", "localhost:8080", true},
		{"file scheme", "file:///etc/passwd", true},
		{"ftp scheme", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
