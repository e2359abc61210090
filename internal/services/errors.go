package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks a referenced heritage record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoContent marks a record with no analyzable material.
	ErrNoContent = errors.New("no content")
	// ErrTranscription wraps a transcription capability failure.
	ErrTranscription = errors.New("transcription error")
	// ErrAnalysisParse marks an analysis payload that did not match the schema.
	ErrAnalysisParse = errors.New("analysis parse error")
	// ErrRemoteTranslation marks a translation capability failure. The cache
	// layer recovers from it locally; it never reaches callers.
	ErrRemoteTranslation = errors.New("remote translation error")
	// ErrPersistence marks a record store write failure.
	ErrPersistence = errors.New("persistence error")
	// ErrConfiguration marks missing or invalid service configuration.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks an unclassified external capability failure.
	ErrExternalTool = errors.New("external capability error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the sentinel marker carried by err, or nil when untagged.
func Kind(err error) error {
	for _, marker := range []error{
		ErrNotFound,
		ErrNoContent,
		ErrTranscription,
		ErrAnalysisParse,
		ErrRemoteTranslation,
		ErrPersistence,
		ErrConfiguration,
		ErrExternalTool,
	} {
		if errors.Is(err, marker) {
			return marker
		}
	}
	return nil
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
