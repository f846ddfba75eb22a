package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/source"
	"github.com/ppiankov/slangspace/internal/store"
)

var listJSON bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved slang terms",
	Long: `List prints the saved collection, oldest first. The collection keeps at
most store.limit terms; saving beyond it evicts the oldest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		slangs, err := a.openStore()
		if err != nil {
			return err
		}

		if listJSON {
			list, err := slangs.List(cmd.Context())
			if err != nil {
				return err
			}
			if list == nil {
				list = []model.SlangTerm{}
			}
			return writeSlangsJSON(list)
		}

		records, err := slangs.Records(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(os.Stderr, "No saved terms\n")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "TERM\tPERIODS\tCOMMENTS\tSAVED\n")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
				r.Slang.Term, len(r.Slang.Periods), r.Slang.CommentCount(), r.CreatedAt.Format(time.DateTime))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\n%d of %d slots used\n", len(records), slangs.Limit())
		return nil
	},
}

// saveCmd represents the save command
var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save slang terms from a JSON or YAML file",
	Long: `Save imports terms into the collection. Terms that are already saved are
skipped; when the collection is full the oldest term is evicted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		terms, err := source.LoadFile(args[0])
		if err != nil {
			return err
		}
		slangs, err := a.openStore()
		if err != nil {
			return err
		}

		saved := 0
		for i := range terms {
			ok, err := slangs.Save(cmd.Context(), &terms[i])
			if err != nil {
				return fmt.Errorf("save %q: %w", terms[i].Term, err)
			}
			if ok {
				saved++
				fmt.Fprintf(os.Stderr, "✓ %s\n", terms[i].Term)
			} else {
				fmt.Fprintf(os.Stderr, "  %s already saved\n", terms[i].Term)
			}
		}
		fmt.Fprintf(os.Stderr, "\nSaved %d of %d terms\n", saved, len(terms))
		return nil
	},
}

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Remove a saved slang term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		slangs, err := a.openStore()
		if err != nil {
			return err
		}
		term := model.NormalizeTerm(args[0])
		if err := slangs.Delete(cmd.Context(), term); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%q is not saved", term)
			}
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Deleted %s\n", term)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the collection as JSON")
}

func writeSlangsJSON(list []model.SlangTerm) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
