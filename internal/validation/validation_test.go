package validation

import (
	"strings"
	"testing"
)

func TestValidateTxHash(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid lowercase", valid, false},
		{"valid uppercase", "0x" + strings.Repeat("AB", 32), false},
		{"missing prefix", strings.Repeat("ab", 33), true},
		{"too short", "0xabcd", true},
		{"too long", valid + "ff", true},
		{"non-hex", "0x" + strings.Repeat("zz", 32), true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTxHash(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTxHash(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb0", false},
		{"valid lowercase", "0x742d35cc6634c0532925a3b844bc9e7595f0beb0", false},
		{"too short", "0x742d35", true},
		{"missing prefix", "742d35Cc6634C0532925a3b844Bc9e7595f0bEb011", true},
		{"non-hex", "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAddress(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateResourceID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "premium-video-1", false},
		{"valid uuid", "b2c3d4e5-f6a7-8901-bcde-f12345678901", false},
		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"slash", "a/b", true},
		{"too long", strings.Repeat("a", 257), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateResourceID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestCompareVersions(t *testing.T) {
	if CompareVersions("1.2.0", "1.10.0") >= 0 {
		t.Error("expected 1.2.0 < 1.10.0")
	}
	if CompareVersions("v2.0.0", "2.0.0") != 0 {
		t.Error("expected leading v to be ignored")
	}
}
