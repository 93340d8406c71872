// Package script parses and runs allocator command scripts.
//
// A script is line oriented:
//
//	# comment
//	ALLOC a 100
//	REALLOC a 250
//	FREE a
//	PRINT
//
// Leading blanks are ignored, as are empty lines and lines whose first
// non-blank character is '#'. Verbs are upper case. Every other line must
// be a well-formed command; a malformed line yields a *ParseError carrying
// its line number and the rest of the script still runs.
package script

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Verb names a script command.
type Verb string

const (
	VerbAlloc   Verb = "ALLOC"
	VerbRealloc Verb = "REALLOC"
	VerbFree    Verb = "FREE"
	VerbPrint   Verb = "PRINT"
)

// CommentPrefix starts a comment line.
const CommentPrefix = "#"

// arity is the token count, verb included, each verb takes.
var arity = map[Verb]int{
	VerbAlloc:   3,
	VerbRealloc: 3,
	VerbFree:    2,
	VerbPrint:   1,
}

var (
	// ErrUnknownCommand is returned for a verb outside ALLOC, REALLOC, FREE, PRINT.
	ErrUnknownCommand = errors.New("script: unknown command")

	// ErrArity is returned when a command has too few or too many operands.
	ErrArity = errors.New("script: wrong number of operands")

	// ErrBadSize is returned when a size operand is not a non-negative integer.
	ErrBadSize = errors.New("script: invalid size")
)

// ParseError reports a malformed script line.
type ParseError struct {
	Line int    // 1-based line number
	Text string // the trimmed line
	Err  error  // ErrUnknownCommand, ErrArity or ErrBadSize
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Command is one parsed script line.
type Command struct {
	Line int
	Verb Verb
	Name string // empty for PRINT
	Size int    // ALLOC and REALLOC only
}

// String renders c in script syntax.
func (c Command) String() string {
	switch c.Verb {
	case VerbAlloc, VerbRealloc:
		return fmt.Sprintf("%s %s %d", c.Verb, c.Name, c.Size)
	case VerbFree:
		return fmt.Sprintf("%s %s", c.Verb, c.Name)
	default:
		return string(c.Verb)
	}
}

// ParseLine parses line number n. ok is false for blank and comment lines.
func ParseLine(n int, line string) (cmd Command, ok bool, err error) {
	text := strings.TrimLeft(line, " \t")
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" || strings.HasPrefix(text, CommentPrefix) {
		return Command{}, false, nil
	}

	fields := strings.Fields(text)
	verb := Verb(fields[0])
	want, known := arity[verb]
	if !known {
		return Command{}, false, &ParseError{Line: n, Text: text, Err: ErrUnknownCommand}
	}
	if len(fields) != want {
		return Command{}, false, &ParseError{Line: n, Text: text, Err: ErrArity}
	}

	cmd = Command{Line: n, Verb: verb}
	if want >= 2 {
		cmd.Name = fields[1]
	}
	if want == 3 {
		size, convErr := strconv.Atoi(fields[2])
		if convErr != nil || size < 0 {
			return Command{}, false, &ParseError{Line: n, Text: text, Err: ErrBadSize}
		}
		cmd.Size = size
	}
	return cmd, true, nil
}
