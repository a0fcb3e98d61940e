package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks a collaborator that cannot be called at all
	// (missing dependency, unset API key). Stages classify it as skipped.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrExternalService marks a runtime failure from an external call.
	ErrExternalService = errors.New("external service error")
	// ErrTimeout marks a stage that exceeded its time budget.
	ErrTimeout = errors.New("timeout")
	// ErrValidation marks input that a stage refuses to process.
	ErrValidation = errors.New("validation error")
	// ErrFatalInput marks input the whole pipeline cannot proceed without,
	// such as a video yielding zero decodable frames.
	ErrFatalInput = errors.New("fatal input error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later status classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalService
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
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
