package loom

import (
	"errors"
	"fmt"
	"strings"
)

// errorText renders a prefixed error message, appending the cause when
// one is recorded.
func errorText(prefix, message string, cause error) string {
	if cause == nil {
		return prefix + ": " + message
	}
	return fmt.Sprintf("%s: %s: %v", prefix, message, cause)
}

// ConfigError indicates an invalid decomposition policy or config file.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string { return errorText("config error", e.Message, e.Cause) }
func (e *ConfigError) Unwrap() error { return e.Cause }

// ProviderError indicates a translation backend failure. Retryable marks
// transient failures (rate limits, timeouts) that are worth retrying.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool
}

func (e *ProviderError) Error() string { return errorText("provider error", e.Message, e.Cause) }
func (e *ProviderError) Unwrap() error { return e.Cause }

// CacheError indicates a translation memory operation failure.
type CacheError struct {
	Message string
	Cause   error
}

func (e *CacheError) Error() string { return errorText("cache error", e.Message, e.Cause) }
func (e *CacheError) Unwrap() error { return e.Cause }

// CodecError indicates a document parse or render failure.
type CodecError struct {
	Message     string
	Cause       error
	ContentType string // codec name, e.g. "html"
}

func (e *CodecError) Error() string {
	return errorText("codec error ("+e.ContentType+")", e.Message, e.Cause)
}

func (e *CodecError) Unwrap() error { return e.Cause }

// CountMismatchError indicates a different number of translations than
// expected: from an AI provider that returned the wrong number of
// strings, or from Recompose when the caller supplies one string per
// resource bundle entry and the counts disagree.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ContextReusedError indicates a second Recompose call on the same
// Context. Contexts are single-use: decompose again for another attempt.
type ContextReusedError struct {
	Session string
}

func (e *ContextReusedError) Error() string {
	return "context has already recomposed a translation and is not reusable"
}

// ParseError indicates a translated string that is not well-formed
// markup. Line and Column locate the failure inside the string; Excerpt
// is a short window of the string around that position.
type ParseError struct {
	Line    int
	Column  int
	Excerpt string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Excerpt != "" {
		return fmt.Sprintf("cannot parse translation at line %d, column %d (near %q): %v",
			e.Line, e.Column, e.Excerpt, e.Cause)
	}
	return fmt.Sprintf("cannot parse translation: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// TagFormatError indicates an element in a translated string whose tag
// carries no index suffix, so it cannot be matched to an original node.
type TagFormatError struct {
	Tag string
}

func (e *TagFormatError) Error() string {
	return fmt.Sprintf("cannot extract index from tag: <%s>.", e.Tag)
}

// UnexpectedTagError indicates an indexed tag in a translated string
// that does not exist in the original translation unit.
type UnexpectedTagError struct {
	Tag string // indexed form, e.g. "b#2"
}

func (e *UnexpectedTagError) Error() string {
	return fmt.Sprintf("Unexpected tag: <%s>.", e.Tag)
}

// MissingTagsError indicates original indexed tags that a translated
// string failed to include. Tags holds the indexed forms in ascending
// index order.
type MissingTagsError struct {
	Tags []string // indexed forms, e.g. "a#1"
}

func (e *MissingTagsError) Error() string {
	parts := make([]string, len(e.Tags))
	for i, tag := range e.Tags {
		parts[i] = "<" + tag + ">"
	}
	return fmt.Sprintf("Expected to find the following tags: %s.", strings.Join(parts, ", "))
}

// ItemError wraps a failure for one resource bundle entry during
// recomposition. Index is the 0-based bundle position; Session
// identifies the Context that produced it; Stack is the goroutine stack
// captured where the failure was recorded.
type ItemError struct {
	Index   int
	Session string
	Err     error
	Stack   []byte
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("resource bundle item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// ItemErrors collects per-entry recomposition failures when passed to
// Recompose as a sink.
type ItemErrors []*ItemError

// Indexes returns the bundle positions that failed, in recording order.
func (e ItemErrors) Indexes() []int {
	out := make([]int, len(e))
	for i, item := range e {
		out[i] = item.Index
	}
	return out
}

// FieldTypeError indicates a field whose value type no longer matches
// the type recorded in an earlier mapping.
type FieldTypeError struct {
	Field    string
	Recorded ValueType
	Current  ValueType
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q: value type mismatch: recorded %s, current %s", e.Field, e.Recorded, e.Current)
}

// FieldError wraps a per-field mapping failure when MapFields is given
// an error sink.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// FieldErrors collects per-field mapping failures.
type FieldErrors []*FieldError

// ErrReorderConflict is returned by MapFields when both reorder-tolerant
// matching and an explicit list reorder are requested at once.
var ErrReorderConflict = errors.New("allow_reorder cannot be combined with an explicit list reorder")
