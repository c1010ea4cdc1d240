package filter

import (
	"encoding/hex"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/rs/zerolog/log"
)

type TapConfig struct {
	Label string `toml:"label"`
}

// Tap logs traffic at debug level and passes it through unchanged.
type Tap struct {
	Base
	label string
}

func NewTap(cfg TapConfig) *Tap {
	label := cfg.Label
	if label == "" {
		label = "tap"
	}
	return &Tap{Base: NewBase("tap"), label: label}
}

func (f *Tap) RecvData(info protocol.DataInfo) []protocol.DataInfo {
	f.log("in", info)
	return []protocol.DataInfo{info}
}

func (f *Tap) SendData(info protocol.DataInfo) []protocol.DataInfo {
	f.log("out", info)
	return []protocol.DataInfo{info}
}

func (f *Tap) SocketConnectionReport(connected bool) {
	log.Debug().Str("tap", f.label).Bool("connected", connected).Msg("tap_connection")
}

func (f *Tap) ApplyInterPluginConfig(props map[string]any) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	log.Debug().Str("tap", f.label).Strs("keys", keys).Msg("tap_config")
}

func (f *Tap) log(direction string, info protocol.DataInfo) {
	observability.RecordBytes("tap", direction, len(info.Data))
	log.Debug().
		Str("tap", f.label).
		Str("direction", direction).
		Int("bytes", len(info.Data)).
		Str("data", hex.EncodeToString(info.Data)).
		Msg("tap_data")
}
