package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/danmuck/ccview/internal/msglist"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/danmuck/ccview/internal/protocol/message"
	"github.com/danmuck/ccview/internal/session"
	"github.com/spf13/cobra"
)

func newDecodeCmd(reg *plugins.Registry) *cobra.Command {
	var (
		protoName string
		file      string
		save      string
	)
	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Decode framed bytes given as hex or read from a binary file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeInput(cmd.InOrStdin(), args, file)
			if err != nil {
				return err
			}
			p, err := reg.Protocol(protoName)
			if err != nil {
				return err
			}
			msgs := p.Read(protocol.DataInfo{Timestamp: time.Now(), Data: data}, true)
			if save != "" {
				recs := make([]msglist.Record, len(msgs))
				for i, m := range msgs {
					recs[i] = msglist.Record{Direction: session.DirectionReceived, Message: m}
				}
				if err := msglist.SaveFile(save, p, recs); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), snapshots(msgs))
		},
	}
	cmd.Flags().StringVarP(&protoName, "protocol", "p", plugins.ProtocolDemo, "protocol name")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read raw bytes from this file")
	cmd.Flags().StringVar(&save, "save", "", "also save the decoded messages as a message list")
	return cmd
}

// decodeInput takes hex from args, raw bytes from file, or hex from stdin.
func decodeInput(stdin io.Reader, args []string, file string) ([]byte, error) {
	if file != "" {
		return os.ReadFile(file)
	}
	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		text = string(raw)
	}
	text = strings.Join(strings.Fields(text), "")
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("input must be hex: %w", err)
	}
	return data, nil
}

func snapshots(msgs []*message.Message) []message.Snapshot {
	out := make([]message.Snapshot, len(msgs))
	for i, m := range msgs {
		out[i] = m.Snapshot()
	}
	return out
}
