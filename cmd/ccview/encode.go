package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/ccview/internal/plugins"
	"github.com/spf13/cobra"
)

func newEncodeCmd(reg *plugins.Registry) *cobra.Command {
	var (
		protoName string
		index     int
		sets      []string
		verbose   bool
	)
	cmd := &cobra.Command{
		Use:   "encode <message>",
		Short: "Build a message and print its framed bytes as hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := reg.Protocol(protoName)
			if err != nil {
				return err
			}
			m, err := p.CreateMessage(args[0], index)
			if err != nil {
				return err
			}
			values, err := parseSets(sets)
			if err != nil {
				return err
			}
			if err := m.SetAll(values); err != nil {
				return err
			}
			p.UpdateMessage(m)
			info, err := p.Encode(m)
			if err != nil {
				return err
			}
			if verbose {
				return writeJSON(cmd.OutOrStdout(), m.Snapshot())
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(info.Data))
			return err
		},
	}
	cmd.Flags().StringVarP(&protoName, "protocol", "p", plugins.ProtocolDemo, "protocol name")
	cmd.Flags().IntVar(&index, "index", 0, "definition index when several messages share the id")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment path=value, repeatable")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the full message snapshot")
	return cmd
}

func parseSets(sets []string) (map[string]string, error) {
	out := make(map[string]string, len(sets))
	for _, s := range sets {
		path, value, ok := strings.Cut(s, "=")
		if !ok || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("invalid --set %q, want path=value", s)
		}
		out[strings.TrimSpace(path)] = value
	}
	return out, nil
}
