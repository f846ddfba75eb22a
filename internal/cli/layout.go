package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/slangspace/internal/interact"
	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/scene"
	"github.com/ppiankov/slangspace/internal/source"
)

var (
	layoutFormat    string
	layoutOutput    string
	layoutHighlight string
	layoutPreview   string
	layoutFromStore bool
)

// layoutCmd represents the layout command
var layoutCmd = &cobra.Command{
	Use:   "layout [file]",
	Short: "Lay out slang terms and export the scene",
	Long: `Layout composes a scene from a JSON or YAML file of slang terms (or the
saved collection with --from-store) and exports cubes, clusters and tiles.

Committed terms are placed permanently. The first uncommitted term, or the
one named by --preview, is placed as a temporary preview.

Example:
  slangspace layout slangs.json
  slangspace layout slangs.yaml --highlight rizz --format json -o scene.json
  slangspace layout --from-store --seed 42 --format yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().StringVar(&layoutFormat, "format", "text", "output format (text, json, yaml)")
	layoutCmd.Flags().StringVarP(&layoutOutput, "output", "o", "", "write output to file instead of stdout")
	layoutCmd.Flags().StringVar(&layoutHighlight, "highlight", "", "pin a committed term")
	layoutCmd.Flags().StringVar(&layoutPreview, "preview", "", "uncommitted term to show as preview")
	layoutCmd.Flags().BoolVar(&layoutFromStore, "from-store", false, "lay out the saved collection")
}

func runLayout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	slangs, err := loadSlangs(cmd, a, args)
	if err != nil {
		return err
	}

	ctl, rec := buildScene(a.cfg, interact.Callbacks{}, a.log)
	defer ctl.Dispose()

	committed, previews := splitSlangs(slangs)
	ctl.Handle(interact.Sync{Slangs: committed})
	ctl.Flush()

	if name := pickPreview(layoutPreview, previews); name != "" {
		st, ok := previews[name]
		if !ok {
			return fmt.Errorf("preview term %q is not an uncommitted term in the input", name)
		}
		ctl.Handle(interact.Preview{Term: &st})
	}
	if layoutHighlight != "" {
		ctl.Handle(interact.Highlight{Term: model.NormalizeTerm(layoutHighlight)})
	}
	ctl.Tick()

	return withOutput(layoutOutput, func(w io.Writer) error {
		return writeScene(w, layoutFormat, ctl.Scene(), rec)
	})
}

// loadSlangs reads the positional file, or the store with --from-store
func loadSlangs(cmd *cobra.Command, a *app, args []string) ([]model.SlangTerm, error) {
	if layoutFromStore {
		s, err := a.openStore()
		if err != nil {
			return nil, err
		}
		return s.List(cmd.Context())
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a slang file is required unless --from-store is set")
	}
	return source.LoadFile(args[0])
}

// splitSlangs separates committed terms from previews keyed by term. The
// first uncommitted entry of a term wins.
func splitSlangs(slangs []model.SlangTerm) ([]model.SlangTerm, map[string]model.SlangTerm) {
	var committed []model.SlangTerm
	previews := make(map[string]model.SlangTerm)
	for _, st := range slangs {
		if st.IsCommitted {
			committed = append(committed, st)
			continue
		}
		if _, dup := previews[st.Term]; !dup {
			previews[st.Term] = st
		}
	}
	return committed, previews
}

func pickPreview(flag string, previews map[string]model.SlangTerm) string {
	if flag != "" {
		return model.NormalizeTerm(flag)
	}
	// lowest key so the choice does not depend on map order
	name := ""
	for term := range previews {
		if name == "" || term < name {
			name = term
		}
	}
	return name
}

// buildScene creates a scene on a recording surface and its controller
func buildScene(cfg *model.Config, cb interact.Callbacks, log *zap.Logger) (*interact.Controller, *scene.Recorder) {
	rec := scene.NewRecorder()
	sc := scene.New(cfg, rec, scene.NewRand(cfg.Layout.Seed), log)
	return interact.New(sc, scene.NewCamera(cfg.Camera), cb, cfg.Layout.BuildsPerTick, log), rec
}

func writeScene(w io.Writer, format string, sc *scene.Scene, rec *scene.Recorder) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(sc.Snapshot())
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(sc.Snapshot())
	case "text":
		return writeSceneText(w, sc, rec)
	default:
		return fmt.Errorf("unknown format: %s (supported: text, json, yaml)", format)
	}
}

func writeSceneText(w io.Writer, sc *scene.Scene, rec *scene.Recorder) error {
	snap := sc.Snapshot()
	census := sc.Census()
	stats := rec.Stats()

	var err error
	printf := func(format string, a ...any) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, format, a...)
	}

	printf("Scene %s\n", snap.ID)
	printf("  Periods:   %d\n", snap.Periods)
	printf("  Cubes:     %d\n", stats.Cubes)
	printf("  Decoys:    %d\n", snap.Decoys)
	printf("  Slots:     %d occupied\n", snap.Occupied)
	if snap.Pinned != "" {
		printf("  Pinned:    %s\n", snap.Pinned)
	}
	printf("\n")

	for _, ts := range snap.Terms {
		tiles := 0
		for _, c := range ts.Clusters {
			tiles += len(c.Tiles)
		}
		kind := "committed"
		if ts.Temporary {
			kind = "preview"
		}
		printf("  %-20s %-10s %3d clusters %4d tiles\n", ts.Term, kind, len(ts.Clusters), tiles)
	}

	printf("\nTiles: %d idle, %d preview, %d visited, %d pinned\n",
		census.Idle, census.Preview, census.Visited, census.Pinned)
	return err
}

// withOutput runs write against stdout, or a file when path is set
func withOutput(path string, write func(io.Writer) error) (err error) {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()
	if err := write(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	return nil
}
