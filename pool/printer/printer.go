// Package printer renders allocator state dumps and leak reports.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/varpool/pool/alloc"
	"github.com/joshuapare/varpool/pool/blocks"
	"github.com/joshuapare/varpool/pool/placement"
	"github.com/joshuapare/varpool/pool/registry"
)

const (
	DefaultIndentSize      = 2
	DefaultMaxContentBytes = 16
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// ShowContents includes a preview of each variable's bytes.
	// Default: false
	ShowContents bool

	// MaxContentBytes limits the preview length. 0 means no limit.
	// Default: 16
	MaxContentBytes int

	// HumanSizes appends human readable sizes (1.0 kB) to byte totals.
	// Default: true
	HumanSizes bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:          FormatText,
		IndentSize:      DefaultIndentSize,
		MaxContentBytes: DefaultMaxContentBytes,
		HumanSizes:      true,
	}
}

// Source is the read-only view of an allocator the printer needs.
// *alloc.Allocator satisfies it.
type Source interface {
	Strategy() placement.Strategy
	Variables() []registry.Record
	Segments() []blocks.Segment
	Stats() alloc.Stats
	Read(name string) ([]byte, error)
}

// Printer handles formatted output of allocator state.
type Printer struct {
	opts   Options
	writer io.Writer
	src    Source
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	p.PrintState()
func New(src Source, w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{src: src, writer: w, opts: opts}
}

// PrintState dumps variables, segments and usage statistics.
func (p *Printer) PrintState() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printStateJSON()
	case FormatText:
		return p.printStateText()
	default:
		return p.printStateText()
	}
}

// PrintLeaks lists every variable still registered. An empty report says so.
func (p *Printer) PrintLeaks() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printLeaksJSON()
	case FormatText:
		return p.printLeaksText()
	default:
		return p.printLeaksText()
	}
}

// preview returns up to MaxContentBytes of a variable and whether it was cut.
func (p *Printer) preview(name string) ([]byte, bool, error) {
	data, err := p.src.Read(name)
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", name, err)
	}
	if p.opts.MaxContentBytes > 0 && len(data) > p.opts.MaxContentBytes {
		return data[:p.opts.MaxContentBytes], true, nil
	}
	return data, false, nil
}
