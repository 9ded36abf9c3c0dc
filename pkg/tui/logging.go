package tui

import "github.com/charmbracelet/log"

// debug logs the handler name and any key/value pairs at debug level
func debug(msg string, keyvals ...interface{}) {
	log.Debug(msg, keyvals...)
}
