package ports

// Logger receives progress messages and failures from every layer. Messages
// are plain sentences; structured detail travels as zerr metadata on errors.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info reports progress such as a created branch or a sandbox action.
	Info(msg string)
	// Warn reports a recoverable problem, such as a malformed generator answer
	// that is being re-queried.
	Warn(msg string)
	// Error reports a failure together with its wrapped causes.
	Error(err error)
}
