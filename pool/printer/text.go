package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

func (p *Printer) printStateText() error {
	vars := p.src.Variables()
	segs := p.src.Segments()
	st := p.src.Stats()
	indent := strings.Repeat(" ", p.opts.IndentSize)

	var b strings.Builder
	fmt.Fprintf(&b, "\n=== Memory State (%s) ===\n", p.src.Strategy())
	fmt.Fprintf(&b, "Active variables: %d\n", len(vars))

	b.WriteString("\nAllocated variables:\n")
	for _, v := range vars {
		fmt.Fprintf(&b, "%s- %s: %d bytes at address %d\n", indent, v.Name, v.Size, v.Addr)
		if p.opts.ShowContents {
			data, cut, err := p.preview(v.Name)
			if err != nil {
				return err
			}
			suffix := ""
			if cut {
				suffix = "..."
			}
			fmt.Fprintf(&b, "%s%s%s%s\n", indent, indent, strconv.Quote(string(data)), suffix)
		}
	}

	b.WriteString("\nMemory blocks:\n")
	for i, s := range segs {
		if s.Free {
			fmt.Fprintf(&b, "%sBlock %d: FREE [%d bytes] at %d - (free)\n", indent, i+1, s.Len, s.Addr)
			continue
		}
		fmt.Fprintf(&b, "%sBlock %d: %s [%d bytes] at %d - (occupied)\n", indent, i+1, s.Owner, s.Len, s.Addr)
	}

	b.WriteString("\nStatistics:\n")
	fmt.Fprintf(&b, "%sTotal memory: %s\n", indent, p.bytes(st.PoolSize))
	fmt.Fprintf(&b, "%sFree memory: %s (%d blocks)\n", indent, p.bytes(st.FreeBytes), st.FreeSegments)
	fmt.Fprintf(&b, "%sUsed memory: %s (%d blocks)\n", indent, p.bytes(st.UsedBytes), st.UsedSegments)
	fmt.Fprintf(&b, "%sFragmentation: %d free blocks (largest %d bytes, %.1f%%)\n",
		indent, st.FreeSegments, st.LargestFree, st.Fragmentation()*100)
	b.WriteString("===========================\n\n")

	_, err := fmt.Fprint(p.writer, b.String())
	return err
}

func (p *Printer) printLeaksText() error {
	vars := p.src.Variables()
	if len(vars) == 0 {
		_, err := fmt.Fprintln(p.writer, "No memory leaks detected.")
		return err
	}
	for _, v := range vars {
		if _, err := fmt.Fprintf(p.writer, "[LEAK] %s: %d bytes at address %d\n", v.Name, v.Size, v.Addr); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) bytes(n int) string {
	if !p.opts.HumanSizes || n < 0 {
		return fmt.Sprintf("%d bytes", n)
	}
	return fmt.Sprintf("%d bytes (%s)", n, humanize.Bytes(uint64(n)))
}
