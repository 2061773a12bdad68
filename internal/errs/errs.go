package errs

import "errors"

var (
	ErrNoFiles        = errors.New("no files provided")
	ErrNoAuthors      = errors.New("no recognizable authors found; unsupported or empty export")
	ErrInvalidJSON    = errors.New("invalid JSON format for Telegram export")
	ErrDateParse      = errors.New("unparseable date")
	ErrUnknownFormat  = errors.New("unknown export format")
	ErrEmptyResponse  = errors.New("analyst returned an empty response")
	ErrAuthorNotFound = errors.New("author not found")
)
