package domain

import "errors"

// Domain errors.
var (
	ErrMalformedURL        = errors.New("malformed reference url")
	ErrProjectNotFound     = errors.New("project not found")
	ErrAmbiguousProject    = errors.New("more than one project matches")
	ErrColumnNotRecognized = errors.New("column not recognized")
	ErrDuplicateColumn     = errors.New("duplicate column database id")
	ErrMissingToken        = errors.New("tracker token not configured")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrConfigExists        = errors.New("config file already exists")
	ErrIssueNotFound       = errors.New("issue not found")
	ErrRepositoryRequired  = errors.New("repository owner/name required")
	ErrEventUnavailable    = errors.New("workflow event unavailable")
)
