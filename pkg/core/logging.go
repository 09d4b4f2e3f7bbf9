package core

import (
	"fmt"
	"log"
	"os"
)

// NewLogger returns a stdout logger with a bracketed component prefix.
func NewLogger(component string) *log.Logger {
	return log.New(os.Stdout, fmt.Sprintf("[%s] ", component), log.LstdFlags|log.Lmsgprefix)
}
