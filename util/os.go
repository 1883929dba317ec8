package util

import (
	"os"
	"os/signal"
	"syscall"
)

// TrapSignalTerm runs cb in its own goroutine whenever SIGTERM or SIGINT
// is received. It returns immediately.
func TrapSignalTerm(cb func(os.Signal)) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range c {
			if cb != nil {
				cb(sig)
			}
		}
	}()
}
