package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustsynth/rustsynth/internal/args"
	"github.com/rustsynth/rustsynth/internal/runner"
	"github.com/rustsynth/rustsynth/internal/selection"
)

const usage = `rustsynth - random Rust program generator for compiler testing

Usage:
  rustsynth [options]

Options:
  -count N        Number of programs to generate (default 1)
  -seed N         Seed for the first program; program i uses seed N+i.
                  Omit for fresh random seeds.
  -strategy S     Selection strategy: uniform, swarm, optimal,
                  aggressive, or random (default random)
  -int-width N    Width of isize/usize on the target: 32 or 64 (default 64)
  -fail-fast      Abandon an attempt on the first dead-end instead of
                  re-rolling locally
  -out DIR        Output directory (default "out")
  -workers N      Concurrent generation workers (default 4)
  -timeout D      Overall wall-clock limit, e.g. 5m; 0 disables (default 0)

Each program i produces out/prog<i>.rs, out/prog<i>.args with one
argument value per line, and out/prog<i>.stats.json.
`

// slotStats is the schema of the per-program stats sidecar.
type slotStats struct {
	Seed        uint64         `json:"seed"`
	Strategy    string         `json:"strategy"`
	Attempts    int            `json:"attempts"`
	NodeCounts  map[string]int `json:"nodeCounts"`
	IdentUses   map[string]int `json:"identUses"`
	AvgIdentUse float64        `json:"avgIdentUse"`
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	count := flag.Int("count", 1, "")
	seed := flag.Int64("seed", -1, "")
	strategyName := flag.String("strategy", "random", "")
	intWidth := flag.Int("int-width", 64, "")
	failFast := flag.Bool("fail-fast", false, "")
	outDir := flag.String("out", "out", "")
	workers := flag.Int("workers", 4, "")
	timeout := flag.Duration("timeout", 0, "")
	flag.Parse()

	if *count < 1 {
		fmt.Fprintln(os.Stderr, "Error: -count must be at least 1")
		os.Exit(1)
	}
	if *workers < 1 {
		fmt.Fprintln(os.Stderr, "Error: -workers must be at least 1")
		os.Exit(1)
	}

	anyStrategy := *strategyName == "random"
	var strategy selection.Strategy
	if !anyStrategy {
		var err error
		strategy, err = selection.Parse(*strategyName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *timeout > 0 {
		time.AfterFunc(*timeout, func() {
			fmt.Fprintf(os.Stderr, "Error: timed out after %s\n", *timeout)
			os.Exit(1)
		})
	}

	start := time.Now()
	jobs := make(chan int)
	var failed int64
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := generateSlot(i, *seed, strategy, anyStrategy, *intWidth, *failFast, *outDir); err != nil {
					fmt.Fprintf(os.Stderr, "prog%d: %v\n", i, err)
					atomic.AddInt64(&failed, 1)
				}
			}
		}()
	}
	for i := 0; i < *count; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ok := int64(*count) - failed
	fmt.Fprintf(os.Stderr, "generated %d/%d programs in %s\n", ok, *count, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

func generateSlot(i int, seed int64, strategy selection.Strategy, anyStrategy bool, intWidth int, failFast bool, outDir string) error {
	opts := runner.Options{
		Strategy:    strategy,
		AnyStrategy: anyStrategy,
		IntWidth:    intWidth,
		FailFast:    failFast,
	}
	if seed >= 0 {
		opts.Seed = uint64(seed) + uint64(i)
		opts.FixedSeed = true
	}

	res, err := runner.Run(opts)
	if err != nil {
		return err
	}

	base := filepath.Join(outDir, fmt.Sprintf("prog%d", i))
	if err := os.WriteFile(base+".rs", []byte(res.Source), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(base+".args", []byte(args.Format(res.Args)), 0o644); err != nil {
		return err
	}

	stats := slotStats{
		Seed:        res.Seed,
		Strategy:    res.Strategy.String(),
		Attempts:    res.Attempts,
		NodeCounts:  res.Stats.NodeCounts,
		IdentUses:   res.Stats.IdentUses,
		AvgIdentUse: res.Stats.AvgIdentUse,
	}
	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(base+".stats.json", append(data, '\n'), 0o644)
}
