package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	scannerInitialBufferSize = 4 * 1024
	scannerMaxLineSize       = 1024 * 1024
)

// Encoding is the character encoding of a script file.
type Encoding uint8

const (
	UTF8   Encoding = iota // default
	Latin1                 // Windows-1252, decoded to UTF-8
)

func (e Encoding) String() string {
	switch e {
	case UTF8:
		return "utf8"
	case Latin1:
		return "latin1"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// ParseEncoding accepts utf8, utf-8, latin1, latin-1, windows-1252 and cp1252.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "windows-1252", "cp1252":
		return Latin1, nil
	default:
		return 0, fmt.Errorf("script: unknown encoding %q", s)
	}
}

// Scanner reads commands one line at a time.
//
//	s := script.NewScanner(f, script.UTF8)
//	for s.Scan() {
//	    cmd, err := s.Command()
//	    ...
//	}
//	if err := s.Err(); err != nil { ... }
type Scanner struct {
	sc   *bufio.Scanner
	line int
	cmd  Command
	err  error
}

// NewScanner returns a Scanner reading r in encoding enc.
func NewScanner(r io.Reader, enc Encoding) *Scanner {
	if enc == Latin1 {
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, scannerInitialBufferSize), scannerMaxLineSize)
	return &Scanner{sc: sc}
}

// Scan advances to the next command or malformed line, skipping blanks
// and comments. It returns false at end of input or on a read error.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		s.line++
		cmd, ok, err := ParseLine(s.line, s.sc.Text())
		if err != nil {
			s.cmd, s.err = Command{Line: s.line}, err
			return true
		}
		if ok {
			s.cmd, s.err = cmd, nil
			return true
		}
	}
	return false
}

// Command returns the current command, or the *ParseError for the current
// line.
func (s *Scanner) Command() (Command, error) { return s.cmd, s.err }

// Line returns the number of lines consumed so far.
func (s *Scanner) Line() int { return s.line }

// Err returns the first read error, if any.
func (s *Scanner) Err() error { return s.sc.Err() }

// Parse reads a whole script. Malformed lines are skipped and returned
// together, joined, alongside the commands that did parse.
func Parse(r io.Reader, enc Encoding) ([]Command, error) {
	var (
		cmds []Command
		errs []error
	)
	s := NewScanner(r, enc)
	for s.Scan() {
		cmd, err := s.Command()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cmds = append(cmds, cmd)
	}
	if err := s.Err(); err != nil {
		return cmds, fmt.Errorf("script: read: %w", err)
	}
	return cmds, errors.Join(errs...)
}
