package cmd

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sofmeright/cargoplug/src/config"
	"github.com/sofmeright/cargoplug/src/host/rpc"
	"github.com/sofmeright/cargoplug/src/logx"
)

var serveFraming string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve ops over JSON-RPC on stdin/stdout",
	Long: `Serve the op registry as a JSON-RPC 2.0 endpoint on stdin/stdout.

Hosts call "dispatch" with {op, is_sync, data} and receive {data}, or an error
whose data carries the failure kind. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFraming, "framing", "", "message framing: header or plain (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c := *cfg
	if serveFraming != "" {
		c.Serve.Framing = config.Framing(serveFraming)
		if err := config.Validate(&c); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	err := rpc.NewServer(&c, logx.FromContext(ctx)).Serve(ctx, stdio{in: os.Stdin, out: os.Stdout})
	if err != nil && ctx.Err() != nil {
		return nil // interrupted
	}
	return err
}

// stdio joins the process streams into one connection.
type stdio struct {
	in  io.ReadCloser
	out io.WriteCloser
}

func (s stdio) Read(p []byte) (int, error)  { return s.in.Read(p) }
func (s stdio) Write(p []byte) (int, error) { return s.out.Write(p) }

func (s stdio) Close() error {
	return errors.Join(s.in.Close(), s.out.Close())
}
