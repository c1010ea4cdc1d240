package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/danmuck/ccview/internal/msglist"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/protocol/field"
	"github.com/spf13/cobra"
)

func newListCmd(reg *plugins.Registry) *cobra.Command {
	var protoName string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins, or the messages of one protocol",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if protoName == "" {
				fmt.Fprintln(w, "KIND\tNAME\tDESCRIPTION")
				for _, info := range reg.List() {
					fmt.Fprintf(w, "%s\t%s\t%s\n", info.Kind, info.Name, info.Description)
				}
				return w.Flush()
			}
			p, err := reg.Protocol(protoName)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "ID\tKEY\tNAME\tMIN\tMAX")
			for _, m := range p.CreateAllMessages() {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", m.ID(), m.IDString(), m.Name(), m.MinLength(), maxLen(m.MaxLength()))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&protoName, "protocol", "p", "", "list the messages of this protocol")
	return cmd
}

func maxLen(n int) string {
	if n >= field.Unbounded {
		return "-"
	}
	return fmt.Sprint(n)
}

func newLoadCmd(reg *plugins.Registry) *cobra.Command {
	var protoName string
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Load a saved message list and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := reg.Protocol(protoName)
			if err != nil {
				return err
			}
			recs, err := msglist.LoadFile(args[0], p)
			if err != nil {
				return err
			}
			type row struct {
				Direction string `json:"direction"`
				Message   any    `json:"message"`
			}
			out := make([]row, len(recs))
			for i, r := range recs {
				out[i] = row{Direction: string(r.Direction), Message: r.Message.Snapshot()}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&protoName, "protocol", "p", plugins.ProtocolDemo, "protocol name")
	return cmd
}
