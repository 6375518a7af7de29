// pkg/nyx_err/classification.go
//
// Error classification with exit codes, layered over UserError.

package nyx_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory decides the exit code and how a failure is reported.
type ErrorCategory int

// Exit codes: validation 2, user 130, internal 3, everything else 1.
const (
	CategorySystem     ErrorCategory = iota // host or filesystem
	CategoryValidation                      // flags, config, policy
	CategoryNetwork                         // downloads
	CategoryUser                            // declined or interrupted
	CategoryInternal                        // nyx bugs
	CategoryDependency                      // missing tools
	CategoryPermission                      // not root
	CategoryIntegrity                       // checksum mismatch
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNetwork:
		return "network"
	case CategoryUser:
		return "user"
	case CategoryInternal:
		return "internal"
	case CategoryDependency:
		return "dependency"
	case CategoryPermission:
		return "permission"
	case CategoryIntegrity:
		return "integrity"
	default:
		return "system"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(fmt.Sprintf("\n\nCause: %v", e.Cause))
	}

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error category
func (e *ClassifiedError) ExitCode() int {
	switch e.Category {
	case CategoryUser:
		return 130
	case CategoryValidation:
		return 2
	case CategoryInternal:
		return 3
	default:
		return 1
	}
}

// GetExitCode extracts the process exit code from any error.
// Expected user errors still fail the run: a half-provisioned host must not look green.
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	return 1
}

// NewValidationError creates an error for input validation failures
func NewValidationError(message string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryValidation,
		Message:     message,
		Remediation: remediation,
	}
}

// NewDependencyError creates an error for missing dependencies
func NewDependencyError(dependency, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryDependency,
		Message:     fmt.Sprintf("%s is required for %s but not found", dependency, operation),
		Remediation: remediation,
	}
}

// NewFilesystemError creates an error for filesystem issues
func NewFilesystemError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategorySystem,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewPermissionError creates an error for permission issues
func NewPermissionError(resource, operation string, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryPermission,
		Message:     fmt.Sprintf("Permission denied: cannot %s %s", operation, resource),
		Remediation: remediation,
	}
}

// NewNetworkError creates an error for network issues
func NewNetworkError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryNetwork,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewIntegrityError reports a checksum mismatch between an expected and actual digest.
func NewIntegrityError(subject, want, got string) error {
	return &ClassifiedError{
		Category: CategoryIntegrity,
		Message:  fmt.Sprintf("%s: expected sha256 %s, got %s", subject, want, got),
		Cause:    ErrChecksumMismatch,
		Remediation: []string{
			"Confirm the published checksum for this artifact",
			"Re-download; the source may have been replaced or truncated",
		},
	}
}

// NewInternalError creates an error for nyx bugs
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in nyx",
			"Include this error message and the log file when reporting it",
		},
	}
}

// NewUserCancelledError creates an error for user-initiated cancellation
func NewUserCancelledError(operation string) error {
	return &ClassifiedError{
		Category:    CategoryUser,
		Message:     fmt.Sprintf("Operation cancelled by user: %s", operation),
		Remediation: []string{"Run the command again to retry"},
	}
}

// CategoryOf returns the category of a classified error, or CategorySystem.
func CategoryOf(err error) ErrorCategory {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category
	}
	return CategorySystem
}
