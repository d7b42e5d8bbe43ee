// Package errors defines the structured error taxonomy shared by the
// bundling pipeline and the version ledger. Every failure surfaced to a
// user carries a kind, the manifest entry or file that caused it, and
// an optional underlying cause.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes bundler errors into a closed set.
type Kind string

const (
	// KindConfig indicates a missing or invalid setting or manifest section.
	KindConfig Kind = "config"
	// KindUnrecognized indicates a manifest entry that matches no known
	// file classification.
	KindUnrecognized Kind = "unrecognized"
	// KindCompile indicates a compiler (SCSS/SASS or TypeScript) rejected
	// its input after all fallback attempts.
	KindCompile Kind = "compile"
	// KindNotFound indicates a local read target does not exist.
	KindNotFound Kind = "not_found"
	// KindVariable indicates an SCSS variable value of an unrenderable type.
	KindVariable Kind = "variable"
	// KindValidation indicates conflicting or malformed version-selection
	// input.
	KindValidation Kind = "validation"
	// KindIO indicates a filesystem or network failure outside the
	// categories above.
	KindIO Kind = "io"
)

// BundleError is the structured error type used across the bundler.
type BundleError struct {
	Kind    Kind
	Entry   string // manifest entry, file path, or URL that failed
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *BundleError) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Kind))
	if e.Entry != "" {
		parts = append(parts, e.Entry+":")
	}
	parts = append(parts, e.Message)
	msg := strings.Join(parts, " ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *BundleError) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind, so sentinel comparisons like
// errors.Is(err, &BundleError{Kind: KindCompile}) work.
func (e *BundleError) Is(target error) bool {
	var t *BundleError
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a BundleError of the given kind.
func New(kind Kind, entry, format string, args ...any) *BundleError {
	return &BundleError{Kind: kind, Entry: entry, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a BundleError of the given kind with an underlying cause.
func Wrap(kind Kind, entry string, cause error, format string, args ...any) *BundleError {
	return &BundleError{Kind: kind, Entry: entry, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Config reports a missing or invalid configuration value.
func Config(format string, args ...any) *BundleError {
	return New(KindConfig, "", format, args...)
}

// UnrecognizedEntry reports a manifest entry that could not be classified.
// The message names the offending identifier so the user can fix the
// manifest.
func UnrecognizedEntry(entry string) *BundleError {
	return New(KindUnrecognized, entry,
		"file type could not be identified; to add inline code, start the block with a comment")
}

// Compile reports a compiler rejection for the given source.
func Compile(entry string, cause error, format string, args ...any) *BundleError {
	return Wrap(KindCompile, entry, cause, format, args...)
}

// NotFound reports an absent local file.
func NotFound(path string, cause error) *BundleError {
	return Wrap(KindNotFound, path, cause, "file does not exist")
}

// Variable reports an SCSS variable whose value cannot be rendered.
func Variable(name, format string, args ...any) *BundleError {
	return New(KindVariable, name, format, args...)
}

// Validation reports conflicting or malformed user input.
func Validation(format string, args ...any) *BundleError {
	return New(KindValidation, "", format, args...)
}

// IsKind reports whether err is (or wraps) a BundleError of the given
// kind.
func IsKind(err error, kind Kind) bool {
	var be *BundleError
	if !errors.As(err, &be) {
		return false
	}
	return be.Kind == kind
}
