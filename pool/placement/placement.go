// Package placement chooses which free segment satisfies a request.
//
// Every strategy considers only free segments of sufficient length, and
// ties always go to the lowest address:
//
//	FirstFit: first sufficient segment
//	BestFit:  smallest sufficient segment (strict <)
//	WorstFit: largest sufficient segment (strict >)
//
// Selection is a pure function of the block list and the requested length.
package placement

import (
	"fmt"
	"strings"

	"github.com/joshuapare/varpool/pool/blocks"
)

// Strategy identifies a placement algorithm. The numeric values match the
// codes accepted on the command line (0, 1, 2).
type Strategy uint8

const (
	FirstFit Strategy = iota
	BestFit
	WorstFit
)

// All lists every strategy in code order.
var All = []Strategy{FirstFit, BestFit, WorstFit}

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "First-fit"
	case BestFit:
		return "Best-fit"
	case WorstFit:
		return "Worst-fit"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool { return s <= WorstFit }

// ParseStrategy accepts "first", "first-fit", "firstfit", "0" and the
// equivalents for best and worst, case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimSuffix(strings.TrimSuffix(key, "-fit"), "fit")
	switch key {
	case "first", "0":
		return FirstFit, nil
	case "best", "1":
		return BestFit, nil
	case "worst", "2":
		return WorstFit, nil
	default:
		return 0, fmt.Errorf("placement: unknown strategy %q (want first, best or worst)", s)
	}
}

// Select returns the index of the segment chosen by s for a request of n
// bytes. ok is false when no free segment is large enough. An unknown
// strategy behaves as FirstFit.
func Select(l *blocks.List, s Strategy, n int) (idx int, ok bool) {
	switch s {
	case BestFit:
		return bestFit(l, n)
	case WorstFit:
		return worstFit(l, n)
	default:
		return firstFit(l, n)
	}
}

func firstFit(l *blocks.List, n int) (int, bool) {
	for i := range l.Len() {
		if s := l.At(i); s.Free && s.Len >= n {
			return i, true
		}
	}
	return -1, false
}

// bestFit and worstFit use the free index; its (length, address) order
// resolves ties to the lowest address, as an address-order scan with strict
// comparison would.
func bestFit(l *blocks.List, n int) (int, bool) { return l.SmallestFit(n) }

func worstFit(l *blocks.List, n int) (int, bool) { return l.LargestFit(n) }
