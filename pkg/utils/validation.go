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

// Package utils holds small path and string helpers shared by the qrsign
// packages.
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrPathRequired is returned when a required path is empty.
	ErrPathRequired = errors.New("path is required")
	// ErrPathNotFound is returned when a path does not exist.
	ErrPathNotFound = errors.New("path does not exist")
	// ErrPathType is returned when a path exists but has the wrong type.
	ErrPathType = errors.New("unexpected path type")
)

// PathType represents the type of path to validate.
type PathType int

const (
	// PathTypeFile expects a regular file.
	PathTypeFile PathType = iota
	// PathTypeFolder expects a directory.
	PathTypeFolder
	// PathTypeAny accepts either file or directory.
	PathTypeAny
)

// PathValidator checks that a named path exists with the expected type.
type PathValidator struct {
	fieldName string
	path      string
	pathType  PathType
}

// NewPathValidator creates a validator for path, reported as fieldName in errors.
func NewPathValidator(fieldName, path string, pathType PathType) *PathValidator {
	return &PathValidator{
		fieldName: fieldName,
		path:      path,
		pathType:  pathType,
	}
}

// Validate checks that the path is set, exists and has the expected type.
// The returned error wraps one of ErrPathRequired, ErrPathNotFound or ErrPathType.
func (v *PathValidator) Validate() error {
	if v.path == "" {
		return fmt.Errorf("%s: %w", v.fieldName, ErrPathRequired)
	}

	info, err := os.Stat(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q: %w", v.fieldName, v.path, ErrPathNotFound)
		}
		return fmt.Errorf("checking %s %q: %w", v.fieldName, v.path, err)
	}

	switch v.pathType {
	case PathTypeFile:
		if info.IsDir() {
			return fmt.Errorf("%s %q is a directory, expected file: %w", v.fieldName, v.path, ErrPathType)
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return fmt.Errorf("%s %q is a file, expected directory: %w", v.fieldName, v.path, ErrPathType)
		}
	case PathTypeAny:
	}

	return nil
}

// ValidateFileExists validates that a path exists and is a file.
func ValidateFileExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFile).Validate()
}

// ValidateFolderExists validates that a path exists and is a directory.
func ValidateFolderExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFolder).Validate()
}

// ValidateOptionalFile validates a file path only if it is not empty.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}

// ValidateOutputPath checks that the directory an output file will be
// written into exists. The file itself may or may not exist.
func ValidateOutputPath(fieldName, path string) error {
	if path == "" {
		return fmt.Errorf("%s: %w", fieldName, ErrPathRequired)
	}
	dir := filepath.Dir(path)
	return ValidateFolderExists(fieldName+" directory", dir)
}

// ExpandHome replaces a leading "~" with the current user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
