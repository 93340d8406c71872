package alloc

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/joshuapare/varpool/pool/placement"
)

// benchNames avoids strconv in the timed loop.
var benchNames = func() []string {
	names := make([]string, 64)
	for i := range names {
		names[i] = "v" + strconv.Itoa(i)
	}
	return names
}()

func benchmarkAllocRelease(b *testing.B, s placement.Strategy) {
	cfg := DefaultConfig
	cfg.PoolSize = 1 << 16
	cfg.MaxVariables = len(benchNames)
	cfg.Strategy = s
	a, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	defer a.Close()

	rng := rand.New(rand.NewSource(7))
	live := make([]bool, len(benchNames))

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		i := rng.Intn(len(benchNames))
		if live[i] {
			if err := a.Release(benchNames[i]); err != nil {
				b.Fatal(err)
			}
			live[i] = false
			continue
		}
		if err := a.Allocate(benchNames[i], 16+rng.Intn(512)); err == nil {
			live[i] = true
		}
	}
}

// Benchmark_AllocRelease_FirstFit benchmarks random alloc/release with first fit.
func Benchmark_AllocRelease_FirstFit(b *testing.B) { benchmarkAllocRelease(b, placement.FirstFit) }

// Benchmark_AllocRelease_BestFit benchmarks random alloc/release with best fit.
func Benchmark_AllocRelease_BestFit(b *testing.B) { benchmarkAllocRelease(b, placement.BestFit) }

// Benchmark_AllocRelease_WorstFit benchmarks random alloc/release with worst fit.
func Benchmark_AllocRelease_WorstFit(b *testing.B) { benchmarkAllocRelease(b, placement.WorstFit) }

// Benchmark_Resize_ShrinkGrow benchmarks a variable bouncing between two
// sizes. The first grow relocates past the pinned neighbour, later ones
// extend in place.
func Benchmark_Resize_ShrinkGrow(b *testing.B) {
	cfg := DefaultConfig
	cfg.PoolSize = 1 << 16
	a, err := New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	defer a.Close()

	if err := a.Allocate("x", 256); err != nil {
		b.Fatal(err)
	}
	if err := a.Allocate("pin", 16); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := range b.N {
		size := 256
		if i%2 == 0 {
			size = 4096
		}
		if _, err := a.Resize("x", size); err != nil {
			b.Fatal(err)
		}
	}
}
