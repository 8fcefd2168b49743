package clock

// Logger is the collaborator contract for non-fatal diagnostics. It matches
// the subset of github.com/livekit/protocol/logger.Logger that this package
// actually calls, so a real logger.Logger value satisfies it without an
// adapter.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, err error, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infow(string, ...interface{}) {}
func (nopLogger) Warnw(string, error, ...interface{}) {}

var _ Logger = nopLogger{}
