package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/otcheck"
)

func main() {
	count := flag.Int("count", 1000, "Number of cases to generate")
	size := flag.Int("size", 2000, "Length of each start text")
	keep := flag.Bool("keep", false, "Keep the benchmark suite after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "otcheck_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	fmt.Printf("Generating %d cases in %s...\n", *count, benchDir)
	startGen := time.Now()

	ctx := context.TODO()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	suite, err := otcheck.OpenSuite(benchDir, otcheck.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	base := strings.Repeat("lorem ipsum ", *size/12+1)[:*size]
	for i := 0; i < *count; i++ {
		edited := fmt.Sprintf("%s[%d]%s", base[:i%*size], i, base[i%*size:])
		cs := otcheck.Case{
			Name:  fmt.Sprintf("case_%d", i),
			Start: base,
			End:   edited,
			Ops:   otcheck.Diff(base, edited),
			Real:  true,
		}
		rel := filepath.Join("cases", fmt.Sprintf("case_%d.json", i))
		if err := suite.Save(ctx, rel, cs); err != nil {
			panic(err)
		}
	}
	fmt.Printf("Generation took: %v\n", time.Since(startGen))

	svc, err := otcheck.New(otcheck.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	// Run 1: Cold (populates the verdict index)
	fmt.Println("Running Check (Run 1 - Cold)...")
	startCold := time.Now()
	results, err := suite.Run(ctx, svc)
	if err != nil {
		panic(err)
	}
	cold := time.Since(startCold)
	fmt.Printf("Run 1 Result: %v (Cases: %d)\n", cold, len(results))

	// Run 2: Warm. A fresh suite simulates a new CLI invocation reading the
	// persisted index.
	suite2, err := otcheck.OpenSuite(benchDir, otcheck.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	fmt.Println("Running Check (Run 2 - Warm)...")
	startWarm := time.Now()
	results2, err := suite2.Run(ctx, svc)
	if err != nil {
		panic(err)
	}
	warm := time.Since(startWarm)

	failed := 0
	for _, r := range results2 {
		if !r.Passed() {
			failed++
		}
	}
	fmt.Printf("Run 2 Result: %v (Cases: %d, Failed: %d)\n", warm, len(results2), failed)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d cases):\n", *count)
	fmt.Printf("  Cold: %v\n", cold)
	fmt.Printf("  Warm: %v\n", warm)
	fmt.Printf("--------------------------------------------------\n")
}
