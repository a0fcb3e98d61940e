package services

import "errors"

// Status is the outcome a stage reports into the pipeline report.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// StageStatus classifies a stage error. A missing collaborator degrades the
// stage to skipped; everything else fails it.
func StageStatus(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrUnavailable):
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// IsFatal reports whether the error aborts the whole pipeline rather than a
// single stage.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatalInput)
}
