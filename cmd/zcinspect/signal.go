package main

import (
	"os"
	"os/signal"
	"sync"

	"github.com/copernet/zerocoin/log"
)

var interruptSignals = []os.Signal{os.Interrupt}

// interruptListener returns a channel closed on the first interrupt
// signal. Long running commands poll it between blocks.
func interruptListener() <-chan struct{} {
	c := make(chan struct{})
	closeOnce := sync.Once{}
	go func() {
		interruptChannel := make(chan os.Signal, 1)
		signal.Notify(interruptChannel, interruptSignals...)

		for sig := range interruptChannel {
			log.Info("Received signal (%s). Stopping after the current block...", sig)
			closeOnce.Do(func() {
				close(c)
			})
		}
	}()

	return c
}

// interruptRequested reports whether interrupted was closed. A nil channel
// is never interrupted.
func interruptRequested(interrupted <-chan struct{}) bool {
	select {
	case <-interrupted:
		return true
	default:
	}

	return false
}
