// Package apperrors defines the application error taxonomy.
//
// Every error carries a stable application status code, distinct from the
// transport status, so API consumers can switch on it without parsing
// messages. Codes are grouped by concern: auth 1xx, analysis 3xx, commit
// review 4xx, notifications 5xx, merge-request review 6xx.
package apperrors

import "errors"

// Error is an application error with a stable status code and an HTTP mapping.
type Error struct {
	HTTPCode int    // transport status for the API layer
	Status   int    // stable application status code
	Info     string // human-readable summary
}

func (e *Error) Error() string {
	return e.Info
}

// Auth errors.
var (
	ErrInvalidToken        = &Error{HTTPCode: 401, Status: 102, Info: "invalid session token"}
	ErrInvalidWebhookToken = &Error{HTTPCode: 401, Status: 103, Info: "invalid webhook token"}
	ErrPermissionDenied    = &Error{HTTPCode: 403, Status: 104, Info: "not bound to this repository"}
)

// Repository analysis errors.
var (
	ErrAnalysisPending  = &Error{HTTPCode: 202, Status: 301, Info: "analysis is still running"}
	ErrAnalysisFailed   = &Error{HTTPCode: 500, Status: 302, Info: "analysis failed"}
	ErrAnalysisNotExist = &Error{HTTPCode: 404, Status: 303, Info: "analysis does not exist"}
)

// Commit review errors.
var (
	ErrCommitReviewPending  = &Error{HTTPCode: 202, Status: 401, Info: "commit review is still running"}
	ErrCommitReviewFailed   = &Error{HTTPCode: 500, Status: 402, Info: "commit review failed"}
	ErrCommitReviewNotExist = &Error{HTTPCode: 404, Status: 403, Info: "commit review does not exist"}
)

// Notification errors.
var (
	ErrInvalidNotificationSettings = &Error{HTTPCode: 400, Status: 501, Info: "invalid notification settings"}
)

// Merge-request review errors.
var (
	ErrReviewPending  = &Error{HTTPCode: 202, Status: 601, Info: "review is still running"}
	ErrReviewFailed   = &Error{HTTPCode: 500, Status: 602, Info: "review failed"}
	ErrReviewNotExist = &Error{HTTPCode: 404, Status: 603, Info: "review does not exist"}
)

// As unwraps err into an *Error when possible.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
