package avrsig

// Logger is the interface used for debug messages.
//
// Some messages will be multiple lines.
type Logger interface {
	Printf(format string, args ...interface{})
}

type nullLoggerImpl struct{}

func (nullLoggerImpl) Printf(format string, args ...interface{}) {}

// nullLogger is a logger that does nothing.
var nullLogger Logger = nullLoggerImpl{}

// GetLogger always returns a logger.
func GetLogger(l Logger) Logger {
	if l == nil {
		return nullLogger
	} else {
		return l
	}
}
