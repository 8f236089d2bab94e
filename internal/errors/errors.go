package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrInvalidSource     = errors.New("invalid source")
	ErrPlaybackFailed    = errors.New("playback failed")
	ErrRetriesExhausted  = errors.New("retries exhausted")
	ErrOutputUnavailable = errors.New("audio output unavailable")
	ErrFeedUnavailable   = errors.New("podcast feed unavailable")
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrNetworkError      = errors.New("network error")
	ErrTimeout           = errors.New("request timeout")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// OnairError wraps an error with a user-friendly suggestion.
type OnairError struct {
	Err        error
	Suggestion string
}

func (e *OnairError) Error() string {
	return e.Err.Error()
}

func (e *OnairError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &OnairError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// Is and As are re-exported so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	var onairErr *OnairError
	if errors.As(err, &onairErr) && onairErr.Suggestion != "" {
		return onairErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Source validation
	if errors.Is(err, ErrInvalidSource) {
		return "Episode URLs must be absolute http(s) URLs, e.g. https://example.org/ep1.mp3"
	}
	if errors.Is(err, ErrEpisodeNotFound) {
		return "Run 'onair episodes' to list available episode slugs"
	}

	// Playback
	if errors.Is(err, ErrRetriesExhausted) || errors.Is(err, ErrPlaybackFailed) {
		return "The stream could not be reached. Press play to try again or pick another source"
	}
	if errors.Is(err, ErrOutputUnavailable) || strings.Contains(errStr, "libvlc") {
		return "Install VLC (libvlc) or set audio.backend = \"null\" in ~/.onairrc"
	}

	// Feeds
	if errors.Is(err, ErrFeedUnavailable) {
		return "Check podcasts.feeds in ~/.onairrc"
	}

	// Network errors
	if errors.Is(err, ErrNetworkError) || errors.Is(err, ErrTimeout) ||
		strings.Contains(errStr, "network") || strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") {
		return "Check your internet connection and try again"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'onair config init' to create a configuration file"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}

// PartialResult represents a result that may have partial failures.
type PartialResult[T any] struct {
	Data   T
	Errors []error
}

// HasErrors returns true if there were any errors.
func (p *PartialResult[T]) HasErrors() bool {
	return len(p.Errors) > 0
}

// AddError adds an error to the partial result.
func (p *PartialResult[T]) AddError(err error) {
	if err != nil {
		p.Errors = append(p.Errors, err)
	}
}

// ErrorSummary returns a summary of all errors.
func (p *PartialResult[T]) ErrorSummary() string {
	if len(p.Errors) == 0 {
		return ""
	}
	if len(p.Errors) == 1 {
		return p.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(p.Errors)))
	for i, err := range p.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}
