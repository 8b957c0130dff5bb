package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailed indicates a source file has syntax errors
	ParseFailed ErrorCode = "PARSE_FAILED"
	// UnsupportedLanguage indicates no parser exists for the file type
	UnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
	// UnbalancedTraversal indicates an object literal closed without opening
	UnbalancedTraversal ErrorCode = "UNBALANCED_TRAVERSAL"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// CacheUnavailable indicates the result cache could not be opened
	CacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// FileUnreadable indicates a source file could not be read or written
	FileUnreadable ErrorCode = "FILE_UNREADABLE"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
	// EditConfig suggests changing the configuration
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// LintError represents a linter error with code, message, and suggestions
type LintError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewLintError creates a new LintError. When suggestedFixes is nil the
// defaults for code are attached.
func NewLintError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *LintError {
	if suggestedFixes == nil {
		suggestedFixes = GetSuggestedFixes(code)
	}
	return &LintError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *LintError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *LintError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *LintError) WithDetails(details interface{}) *LintError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first LintError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var le *LintError
	if stderrors.As(err, &le) {
		return le.Code
	}
	return InternalError
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ParseFailed: {
		{
			Type:        EditConfig,
			Description: "Fix the syntax error or exclude the file via scan.exclude",
		},
	},
	UnsupportedLanguage: {
		{
			Type:        EditConfig,
			Description: "Restrict scan.extensions to .js, .mjs, .cjs, .jsx, .ts, .mts, .cts or .tsx",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "polylint config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
	CacheUnavailable: {
		{
			Type:        RunCommand,
			Command:     "polylint check --cache=false",
			Safe:        true,
			Description: "Run without the result cache",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
