package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/varpool/pool/alloc"
	"github.com/joshuapare/varpool/pool/printer"
)

// Result is the outcome of one script line.
type Result struct {
	Command Command
	Resize  alloc.ResizeKind // REALLOC only
	OldSize int              // REALLOC only
	Err     error
}

// OK reports whether the line succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Message is the line printed for a successful command, empty for PRINT.
func (r Result) Message() string {
	c := r.Command
	switch c.Verb {
	case VerbAlloc:
		return fmt.Sprintf("ALLOC: variable '%s' allocated with %d bytes", c.Name, c.Size)
	case VerbRealloc:
		verb := "resized"
		switch r.Resize {
		case alloc.GrewInPlace:
			verb = "expanded"
		case alloc.Relocated:
			verb = "relocated"
		}
		return fmt.Sprintf("REALLOC: variable '%s' %s from %d to %d bytes", c.Name, verb, r.OldSize, c.Size)
	case VerbFree:
		return fmt.Sprintf("FREE: variable '%s' released", c.Name)
	default:
		return ""
	}
}

// LineError wraps the failure of a script line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("error on line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// Options controls a Runner.
type Options struct {
	// FailFast stops at the first failing line.
	FailFast bool

	// Quiet suppresses success messages. Errors, PRINT and the leak
	// report are still written.
	Quiet bool

	// Printer formats PRINT dumps and the leak report. FormatJSON also
	// switches result lines to JSON.
	Printer printer.Options

	// Logger receives one debug record per line. Nil discards.
	Logger *slog.Logger
}

// Runner executes commands against an allocator.
type Runner struct {
	a       *alloc.Allocator
	out     io.Writer
	errOut  io.Writer
	printer *printer.Printer
	opts    Options
	log     *slog.Logger
}

// NewRunner returns a Runner writing results to out and errors to errOut.
func NewRunner(a *alloc.Allocator, out, errOut io.Writer, opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		a:       a,
		out:     out,
		errOut:  errOut,
		printer: printer.New(a, out, opts.Printer),
		opts:    opts,
		log:     log,
	}
}

// Exec runs a single command and reports it.
func (r *Runner) Exec(cmd Command) Result {
	res := Result{Command: cmd}
	switch cmd.Verb {
	case VerbAlloc:
		res.Err = r.a.Allocate(cmd.Name, cmd.Size)
	case VerbRealloc:
		if rec, ok := r.a.Lookup(cmd.Name); ok {
			res.OldSize = rec.Size
		}
		res.Resize, res.Err = r.a.Resize(cmd.Name, cmd.Size)
	case VerbFree:
		res.Err = r.a.Release(cmd.Name)
	case VerbPrint:
		res.Err = r.printer.PrintState()
	default:
		res.Err = &ParseError{Line: cmd.Line, Text: cmd.String(), Err: ErrUnknownCommand}
	}
	r.log.Debug("command", "line", cmd.Line, "cmd", cmd.String(), "err", res.Err)
	r.report(res)
	return res
}

// Run executes every line s yields. Malformed lines are reported like
// failed commands. It returns a read error, or with FailFast the first
// failure as a *LineError.
func (r *Runner) Run(s *Scanner) ([]Result, error) {
	var results []Result
	for s.Scan() {
		cmd, err := s.Command()
		var res Result
		if err != nil {
			res = Result{Command: cmd, Err: err}
			r.log.Debug("parse error", "line", cmd.Line, "err", err)
			r.report(res)
		} else {
			res = r.Exec(cmd)
		}
		results = append(results, res)

		if res.Err != nil && r.stop(res.Err) {
			return results, &LineError{Line: res.Command.Line, Err: res.Err}
		}
	}
	if err := s.Err(); err != nil {
		return results, fmt.Errorf("script: read: %w", err)
	}
	return results, nil
}

// ReportLeaks writes the leak report for every variable still allocated.
func (r *Runner) ReportLeaks() error { return r.printer.PrintLeaks() }

// stop reports whether err ends the run. Invariant violations always do
// when the allocator runs in verify mode.
func (r *Runner) stop(err error) bool {
	if r.opts.FailFast {
		return true
	}
	return r.a.Config().Verify && errors.Is(err, alloc.ErrInvariantViolation)
}

type jsonResult struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (r *Runner) report(res Result) {
	if r.opts.Printer.Format == printer.FormatJSON {
		if res.Command.Verb == VerbPrint && res.OK() {
			return
		}
		if res.OK() && r.opts.Quiet {
			return
		}
		jr := jsonResult{Line: res.Command.Line, Command: res.Command.String(), OK: res.OK()}
		w := r.out
		if res.OK() {
			jr.Message = res.Message()
		} else {
			jr.Error = res.Err.Error()
			w = r.errOut
		}
		_ = json.NewEncoder(w).Encode(jr)
		return
	}

	if res.Err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", res.Err)
		fmt.Fprintf(r.errOut, "error on line %d\n", res.Command.Line)
		return
	}
	if msg := res.Message(); msg != "" && !r.opts.Quiet {
		fmt.Fprintln(r.out, msg)
	}
}
