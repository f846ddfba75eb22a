package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/slangspace/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the slang collection, search stream and scene export over HTTP",
	Long: `Serve starts the HTTP API:

  GET  /health                     liveness
  GET  /api/slangs                 saved terms, oldest first
  GET  /api/slang/{term}/stream    search progress as server-sent events
  POST /api/slang/save             save a searched term
  GET  /api/scene                  scene snapshot (?highlight=, ?preview=, ?seed=)

Example:
  slangspace serve
  slangspace serve --addr 127.0.0.1:5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	slangs, err := a.openStore()
	if err != nil {
		return err
	}
	searcher, err := a.newSearcher()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	banner("SlangSpace Server")
	fmt.Fprintf(os.Stderr, "  Address:    %s\n", addr)
	fmt.Fprintf(os.Stderr, "  Store:      %s (limit %d)\n", a.cfg.Store.Path, slangs.Limit())
	fmt.Fprintf(os.Stderr, "  LLM:        %s\n", providerLabel(a.cfg.LLM.Provider, a.cfg.LLM.Model))
	fmt.Fprintf(os.Stderr, "\n")

	return server.New(a.cfg, slangs, searcher, a.log).ListenAndServe(cmd.Context(), addr)
}

func providerLabel(provider, model string) string {
	if provider == "" {
		return "disabled"
	}
	return provider + "/" + model
}
