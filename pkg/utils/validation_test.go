// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "message.txt")
	if err := os.WriteFile(file, []byte("Hello World"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "valid file", path: file},
		{name: "empty path", path: "", wantErr: ErrPathRequired},
		{name: "non-existent file", path: filepath.Join(tmpDir, "missing.txt"), wantErr: ErrPathNotFound},
		{name: "directory instead of file", path: tmpDir, wantErr: ErrPathType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileExists("message", tt.path)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFileExists() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFileExists() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFolderExists(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "pubring.kbx")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := ValidateFolderExists("key store", tmpDir); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateFolderExists("key store", file); !errors.Is(err, ErrPathType) {
		t.Errorf("file as folder: error = %v, want ErrPathType", err)
	}
	if err := ValidateFolderExists("key store", filepath.Join(tmpDir, ".gnupg")); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("missing folder: error = %v, want ErrPathNotFound", err)
	}
}

func TestValidateOptionalFile(t *testing.T) {
	if err := ValidateOptionalFile("optional file", ""); err != nil {
		t.Errorf("empty optional path should be accepted, got %v", err)
	}
	if err := ValidateOptionalFile("optional file", "/nonexistent.txt"); err == nil {
		t.Error("missing optional file should be rejected")
	}
}

func TestValidateOutputPath(t *testing.T) {
	tmpDir := t.TempDir()

	if err := ValidateOutputPath("pdf output", filepath.Join(tmpDir, "out.pdf")); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateOutputPath("pdf output", filepath.Join(tmpDir, "missing", "out.pdf")); err == nil {
		t.Error("expected error for missing output directory")
	}
	if err := ValidateOutputPath("pdf output", ""); !errors.Is(err, ErrPathRequired) {
		t.Errorf("error = %v, want ErrPathRequired", err)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := map[string]string{
		"~":               home,
		"~/.gnupg":        filepath.Join(home, ".gnupg"),
		"/etc/gnupg":      "/etc/gnupg",
		"relative/~/path": "relative/~/path",
	}
	for in, want := range tests {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	if MaskSecret("") != "" {
		t.Error("empty secret should stay empty")
	}
	if got := MaskSecret("correct horse battery staple"); got != "***" {
		t.Errorf("MaskSecret() = %q", got)
	}
}
