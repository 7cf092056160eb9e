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

package verify

import (
	"errors"
	"fmt"
)

// ErrorType categorizes verification failures.
type ErrorType int

const (
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown ErrorType = iota

	// ErrTypeSignatureInvalid indicates the cryptographic signature does not
	// verify against the given key.
	ErrTypeSignatureInvalid

	// ErrTypeContentMismatch indicates the signed content differs from the
	// message it was checked against.
	ErrTypeContentMismatch

	// ErrTypeFileNotFound indicates a required file is missing.
	ErrTypeFileNotFound

	// ErrTypeInvalidFormat indicates the signed text, key or QR image could
	// not be parsed.
	ErrTypeInvalidFormat

	// ErrTypeConfiguration indicates invalid options.
	ErrTypeConfiguration

	// ErrTypeIO indicates a read failure.
	ErrTypeIO
)

func (e ErrorType) String() string {
	switch e {
	case ErrTypeSignatureInvalid:
		return "InvalidSignature"
	case ErrTypeContentMismatch:
		return "ContentMismatch"
	case ErrTypeFileNotFound:
		return "FileNotFound"
	case ErrTypeInvalidFormat:
		return "InvalidFormat"
	case ErrTypeConfiguration:
		return "ConfigurationError"
	case ErrTypeIO:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// VerificationError is returned for every verification failure.
type VerificationError struct {
	Type ErrorType
	// Path is the file involved, if any.
	Path    string
	Message string
	Cause   error
}

func (e *VerificationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// NewVerificationError creates a VerificationError.
func NewVerificationError(errType ErrorType, message string, cause error) *VerificationError {
	return &VerificationError{Type: errType, Message: message, Cause: cause}
}

// NewVerificationErrorWithPath creates a VerificationError about path.
func NewVerificationErrorWithPath(errType ErrorType, path, message string, cause error) *VerificationError {
	return &VerificationError{Type: errType, Path: path, Message: message, Cause: cause}
}

// IsType reports whether err wraps a VerificationError of errType.
func IsType(err error, errType ErrorType) bool {
	var ve *VerificationError
	return errors.As(err, &ve) && ve.Type == errType
}
