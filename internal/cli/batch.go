package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchSave    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Search many slang terms from a file in parallel",
	Long: `Batch searches terms concurrently:
- Read terms from input file (one per line, # starts a comment)
- Search terms in parallel with a configurable worker count
- Reddit requests share one rate limiter across workers
- Optionally save each result to the collection
- Optionally write one JSON file per term

Example:
  slangspace batch terms.txt
  slangspace batch terms.txt --concurrency 2 --save
  slangspace batch terms.txt --output-dir ./slangs --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", min(runtime.NumCPU(), 4), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one JSON file per term to this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 20*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "save results to the collection")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	banner("SlangSpace Batch Search")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "  Save:         %v\n", batchSave)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	searcher, err := a.newSearcher()
	if err != nil {
		return err
	}

	var saver worker.Saver
	if batchSave {
		slangs, err := a.openStore()
		if err != nil {
			return err
		}
		saver = slangs
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(searcher, saver, concurrency, a.log)

	fmt.Fprintf(os.Stderr, "⚙️  Searching terms with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	successCount := 0
	failureCount := 0
	savedCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Term, result.Error)
			continue
		}

		successCount++
		if result.Saved {
			savedCount++
		}

		if outputDir != "" {
			path := filepath.Join(outputDir, sanitizeFilename(result.Term)+".json")
			if err := writeSlangJSON(path, result.Slang); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Term, err)
				continue
			}
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d periods, %d comments)\n",
			result.Term, len(result.Slang.Periods), result.Slang.CommentCount())
	}

	banner("Batch Complete")
	fmt.Fprintf(os.Stderr, "  Total:     %d terms\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	if batchSave {
		fmt.Fprintf(os.Stderr, "  Saved:     %d\n", savedCount)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d searches failed", failureCount)
	}
	return nil
}

func writeSlangJSON(path string, st *model.SlangTerm) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %q: %w", st.Term, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// sanitizeFilename makes a term safe to use as a file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	s = replacer.Replace(s)
	if s == "" || s == "." || s == ".." {
		s = "term"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
