package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/slangspace/internal/interact"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/source"
)

var (
	simulateQuiet  bool
	simulateOutput string
	simulateFormat string
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate <slangs-file> <script.yaml>",
	Short: "Replay scripted pointer events against a scene",
	Long: `Simulate builds a scene from a slang file and replays a YAML script of
pointer moves, clicks, highlights, previews and camera moves through the
interaction state machine. Hover and click callbacks are printed as they
fire; the final tile census is printed at the end.

Uncommitted terms in the slang file are only available to preview steps.

Script example:
  steps:
    - move: {term: rizz}
    - click: {term: rizz, tile: 2}
    - leave: true
    - highlight: rizz
    - preview: mid
      tick: 3
    - orbit: {azimuth: 0.3, polar: 0}
    - zoom: 0.8

Example:
  slangspace simulate slangs.json script.yaml
  slangspace simulate slangs.json script.yaml --format json -o scene.json`,
	Args: cobra.ExactArgs(2),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().BoolVarP(&simulateQuiet, "quiet", "q", false, "do not print callbacks")
	simulateCmd.Flags().StringVarP(&simulateOutput, "output", "o", "", "also export the final scene to file")
	simulateCmd.Flags().StringVar(&simulateFormat, "format", "json", "export format (json, yaml)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	slangs, err := source.LoadFile(args[0])
	if err != nil {
		return err
	}
	script, err := interact.LoadScript(args[1])
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if simulateQuiet {
		out = io.Discard
	}

	hovers, clicks := 0, 0
	cb := interact.Callbacks{
		OnHover: func(comment *model.Comment, term string) {
			hovers++
			if comment == nil {
				fmt.Fprintf(out, "hover  -\n")
				return
			}
			fmt.Fprintf(out, "hover  %-16s %s: %s\n", term, comment.User, previewText(comment.Text))
		},
		OnClick: func(comment model.Comment, term string) {
			clicks++
			fmt.Fprintf(out, "click  %-16s %s (%s): %s\n", term, comment.User, comment.Time, comment.Text)
		},
	}

	ctl, rec := buildScene(a.cfg, cb, a.log)
	defer ctl.Dispose()

	committed, previews := splitSlangs(slangs)
	ctl.Handle(interact.Sync{Slangs: committed})
	ctl.Flush()

	banner("SlangSpace Simulation")
	fmt.Fprintf(os.Stderr, "  Terms:   %d committed, %d preview\n", len(committed), len(previews))
	fmt.Fprintf(os.Stderr, "  Steps:   %d\n", len(script.Steps))
	fmt.Fprintf(os.Stderr, "\n")

	if err := ctl.Replay(script, previews); err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	census := ctl.Scene().Census()
	stats := rec.Stats()
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Callbacks: %d hover, %d click\n", hovers, clicks)
	fmt.Fprintf(os.Stderr, "  Frames:    %d\n", stats.Frames)
	fmt.Fprintf(os.Stderr, "  Tiles:     %d idle, %d preview, %d visited, %d group, %d direct, %d pinned\n",
		census.Idle, census.Preview, census.Visited, census.Group, census.Direct, census.Pinned)
	if term := ctl.Hovered(); term != "" {
		fmt.Fprintf(os.Stderr, "  Hovered:   %s\n", term)
	}
	if term := ctl.Scene().Pinned(); term != "" {
		fmt.Fprintf(os.Stderr, "  Pinned:    %s\n", term)
	}

	if simulateOutput == "" {
		return nil
	}
	return withOutput(simulateOutput, func(w io.Writer) error {
		return writeScene(w, simulateFormat, ctl.Scene(), rec)
	})
}

func previewText(s string) string {
	const limit = 60
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
