package util

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	goSync "sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/tagmirror/pkg/errors"
)

// ClearProgress is the escape sequence that erases the progress message.
const ClearProgress = "\033[2K\r"

// Mocked out for unit testing.
var (
	exit             = os.Exit
	stderr io.Writer = os.Stderr
)

// HandleFatalError handles errors that are severe enough to terminate the
// program.
func HandleFatalError(err error) {
	log.WithError(err).Debug("Fatal error")

	if msg, ok := errors.GetFriendlyMessage(err); ok {
		fmt.Fprintln(stderr, msg)
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", err)
	}
	exit(1)
}

// HandlePanic prints the stack trace of a panic, and exits. It should be
// deferred at the top of every goroutine that isn't expected to crash.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("stack", string(debug.Stack())).Error("Crashed")
		HandleFatalError(errors.New(fmt.Sprintf("unexpected panic: %v", r)))
	}
}

// ProgressPrinter prints a message followed by an animated ellipsis until it's
// stopped.
type ProgressPrinter struct {
	out      io.Writer
	msg      string
	interval time.Duration

	stop     chan struct{}
	stopped  chan struct{}
	stopOnce goSync.Once
}

// NewProgressPrinter returns a printer for `msg`. The caller must call Run
// to start printing.
func NewProgressPrinter(out io.Writer, msg string) *ProgressPrinter {
	return &ProgressPrinter{
		out:      out,
		msg:      msg,
		interval: 500 * time.Millisecond,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Run prints the message until Stop or StopWithPrint is called.
func (pp *ProgressPrinter) Run() {
	defer close(pp.stopped)

	ticker := time.NewTicker(pp.interval)
	defer ticker.Stop()

	dots := 0
	for {
		fmt.Fprintf(pp.out, "%s%s%s", ClearProgress, pp.msg, strings.Repeat(".", dots))
		select {
		case <-ticker.C:
			dots = (dots + 1) % 4
		case <-pp.stop:
			return
		}
	}
}

// Stop stops printing, and leaves the last message on the screen.
func (pp *ProgressPrinter) Stop() {
	pp.StopWithPrint("\n")
}

// StopWithPrint stops printing, and then writes `final`.
func (pp *ProgressPrinter) StopWithPrint(final string) {
	pp.stopOnce.Do(func() {
		close(pp.stop)
		<-pp.stopped
		fmt.Fprint(pp.out, final)
	})
}
