package model

import "errors"

// Sentinel errors for programmatic checking.
var (
	ErrParseFailed = errors.New("source failed to parse")
	ErrWriteRace   = errors.New("file changed on disk during operation")
	ErrNoLoops     = errors.New("no rewritable loops found")
)

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone        ErrorCode = ""
	ECParseFailed ErrorCode = "ERR_PARSE"
	ECNoLoops     ErrorCode = "ERR_NO_LOOPS"
	ECWriteRace   ErrorCode = "ERR_WRITE_RACE"
	ECReadError   ErrorCode = "ERR_READ_FILE"
	ECWriteError  ErrorCode = "ERR_WRITE_FILE"
	ECConfigError ErrorCode = "ERR_CONFIG"
	ECUnknown     ErrorCode = "ERR_UNKNOWN"
)
