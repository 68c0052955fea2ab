package config

import (
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		fieldName string
		wantError bool
		errMsg    string
	}{
		{
			name:      "valid https url",
			url:       "https://github.com/acme/service",
			fieldName: "Repository URL",
			wantError: false,
		},
		{
			name:      "valid http url",
			url:       "http://localhost:8080/repo.git",
			fieldName: "Repository URL",
			wantError: false,
		},
		{
			name:      "empty url",
			url:       "",
			fieldName: "Repository URL",
			wantError: true,
			errMsg:    "cannot be empty",
		},
		{
			name:      "no scheme",
			url:       "github.com/acme/service",
			fieldName: "Repository URL",
			wantError: true,
			errMsg:    "must include a scheme",
		},
		{
			name:      "no host",
			url:       "https://",
			fieldName: "Repository URL",
			wantError: true,
			errMsg:    "must include a host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.fieldName)
			if tt.wantError {
				if err == nil {
					t.Errorf("ValidateURL() expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateURL() error = %v, want error containing %v", err, tt.errMsg)
				}
			} else {
				if err != nil {
					t.Errorf("ValidateURL() unexpected error: %v", err)
				}
			}
		})
	}
}

func TestParseMaxFileSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int64
		wantError bool
	}{
		{name: "megabytes", input: "5MB", expected: 5000000},
		{name: "gigabytes", input: "1GB", expected: 1000000000},
		{name: "plain bytes", input: "4096", expected: 4096},
		{name: "garbage", input: "lots", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := ParseMaxFileSize(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseMaxFileSize() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("ParseMaxFileSize() unexpected error: %v", err)
			}
			if size != tt.expected {
				t.Errorf("ParseMaxFileSize() = %d, want %d", size, tt.expected)
			}
		})
	}
}

func TestValidateThreadCount(t *testing.T) {
	if err := ValidateThreadCount(4); err != nil {
		t.Errorf("ValidateThreadCount(4) unexpected error: %v", err)
	}
	if err := ValidateThreadCount(0); err == nil {
		t.Error("ValidateThreadCount(0) expected error but got none")
	}
	if err := ValidateThreadCount(101); err == nil {
		t.Error("ValidateThreadCount(101) expected error but got none")
	}
}

func TestDefaultScanOptions(t *testing.T) {
	opts := DefaultScanOptions()
	if opts.MaxScanGoRoutines < 1 {
		t.Error("default worker count must be positive")
	}
	if opts.UltraRepoFiles <= opts.LargeRepoFiles {
		t.Error("ultra-large threshold must exceed large threshold")
	}
	if opts.UltraMaxSampledFiles >= opts.MaxSampledFiles {
		t.Error("ultra-large cap must be tighter than the large cap")
	}
	if !opts.EmptyReportFallback {
		t.Error("empty-report fallback ships enabled")
	}
}
