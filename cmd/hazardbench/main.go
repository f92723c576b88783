// Command hazardbench is a sample driver for the sharedobj.Set container.
// It is not part of the core SMR/split-ordered-list machinery — see
// SPEC_FULL.md §1 — and exists only to give the library a runnable example
// of concurrent insert/find/delete traffic.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/benedias/sharedobj"
	"github.com/benedias/sharedobj/internal/xatomic"
)

var (
	goroutines int
	perWorker  int
	tableSize  uint32
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "hazardbench",
	Short: "Stress a hazard-pointer-backed split-ordered set with concurrent workers",
	RunE:  run,
}

func init() {
	rootCmd.Flags().IntVar(&goroutines, "goroutines", 8, "number of concurrent worker goroutines")
	rootCmd.Flags().IntVar(&perWorker, "per-worker", 10_000, "inserts issued per worker")
	rootCmd.Flags().Uint32Var(&tableSize, "table-size", 16, "initial bucket-table size")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	logger.Info("starting run",
		"goroutines", goroutines,
		"perWorker", perWorker,
		"tableSize", tableSize,
		"cacheLineSize", int(xatomic.CacheLineSize),
	)

	set := sharedobj.NewSetSized[uint32](func(v uint32) uint32 { return v }, tableSize, 4)
	defer set.Close()

	start := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < goroutines; w++ {
		wg.Add(1)
		go func(base uint32) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(base) ^ time.Now().UnixNano()))
			for i := 0; i < perWorker; i++ {
				v := base*uint32(perWorker) + uint32(i)
				set.Insert(v)
				if r.Intn(4) == 0 {
					set.Remove(v)
				}
			}
		}(uint32(w))
	}
	wg.Wait()
	elapsed := time.Since(start)

	logger.Info("run complete",
		"elapsed", elapsed.String(),
		"finalSize", set.Len(),
	)
	return nil
}
