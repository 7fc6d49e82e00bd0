package cli

import (
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/effective-security/stockmcp/server"
	"github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/spf13/cobra"
)

func (a *app) newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over stdio (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	list, err := a.tools(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// the client closing stdin ends the session, Serve still answers what was read
	in := &eofNotifier{r: cmd.InOrStdin(), onEOF: cancel}
	srv, err := server.New(stdio.NewStdioServerTransportWithIO(in, cmd.OutOrStdout()), list...)
	if err != nil {
		return err
	}

	logger.Infof("Stock Market MCP Server running on stdio")
	return srv.Serve(ctx)
}

type eofNotifier struct {
	r     io.Reader
	once  sync.Once
	onEOF func()
}

func (e *eofNotifier) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == io.EOF {
		e.once.Do(e.onEOF)
	}
	return n, err
}
