// Bench runs a local sort/partition/merge pass over generated records and
// reports timings and peak memory.
//
// It plays every role of a distributed sort on one machine: mappers
// generate, sort and partition their blocks and spill one run file per
// partition; reducers merge each partition's runs with a FileMerger.
// Outputs are then validated and checked against the in-memory merge.
//
// Usage:
//
//	go run ./cmd/bench -records 10000000 -mappers 8 -partitions 16
//
// Flags:
//
//	-records       Total number of records (default: 1,000,000)
//	-mappers       Number of map tasks, run concurrently (default: 4)
//	-partitions    Number of key-range partitions (default: 8)
//	-input-batch   FileMerger read buffer per input, in bytes (default: 1 MiB)
//	-output-batch  FileMerger write buffer, in records (default: 4096)
//	-dir           Working directory (default: a fresh temp dir, removed on exit)
//	-seed          Record generator seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tamirms/sortlib"
	"github.com/tamirms/sortlib/internal/gensort"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

type config struct {
	records     int
	mappers     int
	partitions  int
	inputBatch  int
	outputBatch int
	dir         string
	seed        uint64
}

func main() {
	var cfg config
	flag.IntVar(&cfg.records, "records", 1_000_000, "total number of records")
	flag.IntVar(&cfg.mappers, "mappers", 4, "number of map tasks")
	flag.IntVar(&cfg.partitions, "partitions", 8, "number of key-range partitions")
	flag.IntVar(&cfg.inputBatch, "input-batch", 1<<20, "merge read buffer per input file, in bytes")
	flag.IntVar(&cfg.outputBatch, "output-batch", 4096, "merge write buffer, in records")
	flag.StringVar(&cfg.dir, "dir", "", "working directory (default: temp dir, removed on exit)")
	flag.Uint64Var(&cfg.seed, "seed", 0x1234, "record generator seed")
	flag.Parse()

	if cfg.mappers < 1 || cfg.records < 0 {
		fmt.Printf("Invalid flags: need -mappers >= 1 and -records >= 0\n")
		os.Exit(2)
	}

	if err := run(context.Background(), cfg); err != nil {
		fmt.Printf("Bench failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config) error {
	if cfg.dir == "" {
		dir, err := os.MkdirTemp("", "sortbench-")
		if err != nil {
			return fmt.Errorf("create temp dir: %w", err)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		cfg.dir = dir
	}

	boundaries, err := sortlib.GetBoundaries(cfg.partitions)
	if err != nil {
		return err
	}

	fmt.Printf("Configuration:\n")
	fmt.Printf("  Records:      %d (%.1f MB)\n", cfg.records, float64(cfg.records)*sortlib.RecordSize/1_000_000)
	fmt.Printf("  Mappers:      %d\n", cfg.mappers)
	fmt.Printf("  Partitions:   %d\n", cfg.partitions)
	fmt.Printf("  Input batch:  %d bytes\n", cfg.inputBatch)
	fmt.Printf("  Output batch: %d records\n", cfg.outputBatch)
	fmt.Printf("  Dir:          %s\n", cfg.dir)
	fmt.Printf("  GOMAXPROCS:   %d\n", runtime.GOMAXPROCS(0))
	fmt.Println()

	baselineRSS := getMaxRSS()

	fmt.Println("Map: generate, sort and partition...")
	mapStart := time.Now()
	inputs, runs, err := mapPhase(ctx, cfg, boundaries)
	if err != nil {
		return fmt.Errorf("map: %w", err)
	}
	mapDuration := time.Since(mapStart)

	fmt.Println("Reduce: merge partition runs...")
	reduceStart := time.Now()
	outputs, stats, err := reducePhase(ctx, cfg, runs)
	if err != nil {
		return fmt.Errorf("reduce: %w", err)
	}
	reduceDuration := time.Since(reduceStart)
	peakRSS := getMaxRSS()

	fmt.Println("Validating outputs...")
	validateStart := time.Now()
	if err := validate(inputs, outputs, runs, boundaries); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	validateDuration := time.Since(validateStart)

	var refills, writes int
	for _, s := range stats {
		refills += s.Refills
		writes += s.Writes
	}
	total := mapDuration + reduceDuration
	mb := float64(cfg.records) * sortlib.RecordSize / 1_000_000

	fmt.Printf("\n")
	fmt.Printf("%-20s %10.2f sec  %8.1f MB/s\n", "Map", mapDuration.Seconds(), mb/mapDuration.Seconds())
	fmt.Printf("%-20s %10.2f sec  %8.1f MB/s\n", "Reduce", reduceDuration.Seconds(), mb/reduceDuration.Seconds())
	fmt.Printf("%-20s %10.2f sec  %8.1f MB/s\n", "Total", total.Seconds(), mb/total.Seconds())
	fmt.Printf("%-20s %10.2f sec\n", "Validate", validateDuration.Seconds())
	fmt.Printf("%-20s %10d\n", "Merge refills", refills)
	fmt.Printf("%-20s %10d\n", "Merge writes", writes)
	fmt.Printf("%-20s %10.1f MB\n", "Peak RSS growth", float64(peakRSS-min(baselineRSS, peakRSS))/1_000_000)
	return nil
}

// mapPhase runs every mapper concurrently. It returns the summary of each
// mapper's generated block and, per partition, the run files spilled for it.
func mapPhase(ctx context.Context, cfg config, boundaries []sortlib.Key) ([]sortlib.Summary, [][]string, error) {
	summaries := make([]sortlib.Summary, cfg.mappers)
	runs := make([][]string, len(boundaries))
	for p := range runs {
		runs[p] = make([]string, cfg.mappers)
	}

	perMapper := cfg.records / cfg.mappers
	g, gctx := errgroup.WithContext(ctx)
	for m := range cfg.mappers {
		n := perMapper
		if m == cfg.mappers-1 {
			n = cfg.records - perMapper*(cfg.mappers-1)
		}
		start := uint64(m * perMapper)
		g.Go(func() error {
			// Each mapper fills its own block single-threaded; the mappers
			// already run in parallel.
			buf, err := gensort.Generate(gctx, n, start, cfg.seed, 1)
			if err != nil {
				return err
			}
			records, err := sortlib.AsRecords(buf)
			if err != nil {
				return err
			}
			summaries[m] = sortlib.Summarize(records)

			parts, err := sortlib.SortAndPartition(records, boundaries)
			if err != nil {
				return err
			}
			for p, part := range parts {
				path := filepath.Join(cfg.dir, fmt.Sprintf("map-%03d-part-%04d", m, p))
				if err := os.WriteFile(path, sortlib.RecordBytes(part.Slice(records)), 0o644); err != nil {
					return err
				}
				runs[p][m] = path
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return summaries, runs, nil
}

// reducePhase merges each partition's runs into one output file, one
// FileMerger per partition, bounded by GOMAXPROCS.
func reducePhase(ctx context.Context, cfg config, runs [][]string) ([]string, []sortlib.FileMergeStats, error) {
	outputs := make([]string, len(runs))
	stats := make([]sortlib.FileMergeStats, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for p := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := filepath.Join(cfg.dir, fmt.Sprintf("part-%04d", p))
			fm, err := sortlib.NewFileMerger(runs[p], out, cfg.inputBatch, cfg.outputBatch)
			if err != nil {
				return err
			}
			if _, err := fm.Run(); err != nil {
				return fmt.Errorf("partition %d: %w", p, err)
			}
			outputs[p] = out
			stats[p] = fm.Stats()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return outputs, stats, nil
}

// validate checks that every output is sorted and within its key range,
// that together they hold exactly the generated records, and that the
// file merge of partition 0 agrees with the in-memory merge.
func validate(inputs []sortlib.Summary, outputs []string, runs [][]string, boundaries []sortlib.Key) error {
	want := sortlib.Summarize(nil)
	for _, s := range inputs {
		want = want.Add(s)
	}

	got := sortlib.Summarize(nil)
	for p, path := range outputs {
		s, err := sortlib.ValidateFile(path)
		if err != nil {
			return err
		}
		if !s.Sorted {
			return fmt.Errorf("partition %d: record %d out of order", p, s.FirstUnsorted)
		}
		got = got.Add(s)
	}
	if !got.Equivalent(want) {
		return fmt.Errorf("outputs hold %d records (checksum %#x), inputs %d (checksum %#x)",
			got.Records, got.Checksum, want.Records, want.Checksum)
	}

	return crossCheck(outputs[0], runs[0], boundaries)
}

// crossCheck merges one partition's runs in memory and compares the
// result with the file merger's output.
func crossCheck(output string, runs []string, boundaries []sortlib.Key) error {
	views := make([][]sortlib.Record, len(runs))
	for i, path := range runs {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if views[i], err = sortlib.AsRecords(data); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	merged, err := sortlib.MergePartitions(views, sortlib.WithBoundaries(boundaries))
	if err != nil {
		return err
	}
	for i := range merged {
		if r := sortlib.PartitionOf(merged[i].Key(), boundaries); r != 0 {
			return fmt.Errorf("partition 0 holds a key of range %d", r)
		}
	}

	data, err := os.ReadFile(output)
	if err != nil {
		return err
	}
	fromFile, err := sortlib.AsRecords(data)
	if err != nil {
		return err
	}
	if len(fromFile) != len(merged) {
		return fmt.Errorf("file merge wrote %d records, in-memory merge %d", len(fromFile), len(merged))
	}
	for i := range merged {
		if merged[i] != fromFile[i] {
			return fmt.Errorf("file merge and in-memory merge disagree at record %d", i)
		}
	}
	return nil
}
