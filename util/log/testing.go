package log

import (
	"flag"
	"os"
)

var _testingLogger Logger

// TestingLogger returns a logger for use in unit tests. It logs to stdout
// when tests run with -v, and discards everything otherwise.
func TestingLogger() Logger {
	if _testingLogger != nil {
		return _testingLogger
	}

	if v := flag.Lookup("test.v"); v != nil && v.Value.String() == "true" {
		SetLevel(LEVEL_DEBUG)
		_testingLogger = New(os.Stdout)
	} else {
		_testingLogger = NewNopLogger()
	}
	return _testingLogger
}
