package log

import (
	"log"
	"os"
)

// Debug controls debug log output. Set by CTC_DEBUG environment variable by default.
var Debug = os.Getenv("CTC_DEBUG") != ""

// Debugf logs a debug message if Debug is true.
func Debugf(format string, v ...any) {
	if !Debug {
		return
	}

	log.Printf(format, v...)
}
