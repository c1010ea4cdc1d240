package main

import (
	"encoding/json"
	"io"

	"github.com/danmuck/ccview/internal/plugins"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ccview",
		Short: "Inspect, build and exchange binary protocol messages.",
		Long: `ccview decodes and encodes messages of the built-in protocols, ` +
			`and runs a live session (socket, filters, protocol) behind an HTTP API.`,
		SilenceUsage: true,
	}
	reg := plugins.Default()
	root.AddCommand(
		newDecodeCmd(reg),
		newEncodeCmd(reg),
		newListCmd(reg),
		newLoadCmd(reg),
		newServeCmd(reg),
		newConfigCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
