package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/slangspace/internal/source"
)

var (
	searchSave    bool
	searchTimeout time.Duration
	searchOutput  string
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search a slang term",
	Long: `Search looks a term up in the saved collection first. Unsaved terms are
analyzed by the LLM into meaning periods, and Reddit comments are attached
to each period. Progress goes to stderr, the result as JSON to stdout.

Requires OPENROUTER_API_KEY (or llm.api_key) for terms not yet saved.

Example:
  slangspace search rizz
  slangspace search "no cap" --save
  slangspace search skibidi -o skibidi.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchSave, "save", false, "save the result to the collection")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 5*time.Minute, "search timeout")
	searchCmd.Flags().StringVarP(&searchOutput, "output", "o", "", "write the result to file instead of stdout")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	searcher, err := a.newSearcher()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, searchTimeout)
		defer cancel()
	}

	result, err := searcher.Search(ctx, args[0], printEvent)
	if err != nil {
		if errors.Is(err, source.ErrNoProvider) {
			return fmt.Errorf("%w: set OPENROUTER_API_KEY to search new terms", err)
		}
		return err
	}

	if searchSave && !result.FromDB {
		slangs, err := a.openStore()
		if err != nil {
			return err
		}
		saved, err := slangs.Save(ctx, &result.SlangTerm)
		if err != nil {
			return fmt.Errorf("save %q: %w", result.Term, err)
		}
		if saved {
			fmt.Fprintf(os.Stderr, "✓ Saved %s\n", result.Term)
		} else {
			fmt.Fprintf(os.Stderr, "  %s already saved\n", result.Term)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if searchOutput != "" {
		if err := os.WriteFile(searchOutput, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", searchOutput)
		return nil
	}
	fmt.Println(string(data))
	return nil
}

// printEvent renders search progress on stderr
func printEvent(e source.Event) {
	switch e.Type {
	case source.EventStatus:
		if m, ok := e.Data.(source.Message); ok {
			fmt.Fprintf(os.Stderr, "⚙️  %s\n", m.Msg)
		}
	case source.EventCached:
		fmt.Fprintf(os.Stderr, "✓ Found in collection\n")
	case source.EventAnalysis:
		fmt.Fprintf(os.Stderr, "✓ Analysis ready\n")
	case source.EventResult:
		fmt.Fprintf(os.Stderr, "✓ Comments attached\n")
	case source.EventError:
		if m, ok := e.Data.(source.Message); ok {
			fmt.Fprintf(os.Stderr, "✗ %s\n", m.Msg)
		}
	}
}
