package core

import (
	"errors"
	"testing"
)

func TestCheckEnvironment(t *testing.T) {
	tests := []struct {
		goos, goarch string
		wantErr      bool
	}{
		{"linux", "amd64", false},
		{"linux", "arm64", false},
		{"darwin", "amd64", false},
		{"darwin", "arm64", false},
		{"windows", "amd64", false},
		{"windows", "arm64", true},
		{"linux", "386", true},
		{"freebsd", "amd64", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			err := CheckEnvironment(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckEnvironment() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var envErr *UnsupportedEnvironmentError
			if !errors.As(err, &envErr) {
				t.Fatalf("Expected *UnsupportedEnvironmentError, got %T", err)
			}
			if envErr.OS != tt.goos || envErr.Arch != tt.goarch {
				t.Errorf("Error carries %s/%s, want %s/%s", envErr.OS, envErr.Arch, tt.goos, tt.goarch)
			}
		})
	}
}

func TestPlatformBinaryName(t *testing.T) {
	tests := map[string]string{
		"linux/amd64":   "license-auditor-linux-x86_64",
		"linux/arm64":   "license-auditor-linux-aarch64",
		"darwin/amd64":  "license-auditor-macos-x86_64",
		"darwin/arm64":  "license-auditor-macos-aarch64",
		"windows/amd64": "license-auditor-windows-x86_64.exe",
	}
	for pair, want := range tests {
		var goos, goarch string
		for i := range pair {
			if pair[i] == '/' {
				goos, goarch = pair[:i], pair[i+1:]
			}
		}
		got, err := PlatformBinaryName(goos, goarch)
		if err != nil {
			t.Fatalf("PlatformBinaryName(%s) error: %v", pair, err)
		}
		if got != want {
			t.Errorf("PlatformBinaryName(%s) = %q, want %q", pair, got, want)
		}
	}

	if _, err := PlatformBinaryName("plan9", "amd64"); !IsUnsupportedEnvironment(err) {
		t.Errorf("Expected unsupported environment error, got %v", err)
	}
}

func TestSupportedPlatforms_Sorted(t *testing.T) {
	got := SupportedPlatforms()
	if len(got) != 5 {
		t.Fatalf("Expected 5 platforms, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1] > got[i] {
			t.Errorf("SupportedPlatforms not sorted: %v", got)
		}
	}
}
