package filter

import (
	"fmt"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Chain applies an ordered list of filters.
type Chain struct {
	filters  []Filter
	reporter Reporter
}

// NewChain wires every filter's reporter back into the chain.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{filters: filters}
	for i, f := range filters {
		f.SetReporter(&stageReporter{chain: c, idx: i})
	}
	return c
}

// SetReporter sets the owner of data and notifications leaving the chain.
func (c *Chain) SetReporter(r Reporter) { c.reporter = r }

func (c *Chain) Filters() []Filter { return c.filters }

func (c *Chain) Len() int { return len(c.filters) }

// Start starts the filters in order. On failure the already started filters
// are stopped again.
func (c *Chain) Start() error {
	for i, f := range c.filters {
		if err := f.Start(); err != nil {
			for j := i - 1; j >= 0; j-- {
				c.filters[j].Stop()
			}
			return fmt.Errorf("filter %s: %w", f.Name(), err)
		}
	}
	return nil
}

func (c *Chain) Stop() {
	for i := len(c.filters) - 1; i >= 0; i-- {
		c.filters[i].Stop()
	}
}

// Recv runs inbound data through every filter in order.
func (c *Chain) Recv(info protocol.DataInfo) []protocol.DataInfo {
	bufs := []protocol.DataInfo{info}
	for _, f := range c.filters {
		bufs = recvThrough(f, bufs)
		if len(bufs) == 0 {
			break
		}
	}
	return bufs
}

// Send runs outbound data through every filter in reverse order.
func (c *Chain) Send(info protocol.DataInfo) []protocol.DataInfo {
	return c.sendBelow(len(c.filters), info)
}

// sendBelow runs info through filters idx-1 down to 0.
func (c *Chain) sendBelow(idx int, info protocol.DataInfo) []protocol.DataInfo {
	bufs := []protocol.DataInfo{info}
	for i := idx - 1; i >= 0; i-- {
		bufs = sendThrough(c.filters[i], bufs)
		if len(bufs) == 0 {
			break
		}
	}
	return bufs
}

// SocketConnectionReport forwards a socket connection change to every filter.
func (c *Chain) SocketConnectionReport(connected bool) {
	for _, f := range c.filters {
		f.SocketConnectionReport(connected)
	}
}

// ApplyInterPluginConfig forwards properties published outside the chain to
// every filter.
func (c *Chain) ApplyInterPluginConfig(props map[string]any) {
	for _, f := range c.filters {
		f.ApplyInterPluginConfig(props)
	}
}

func recvThrough(f Filter, in []protocol.DataInfo) []protocol.DataInfo {
	var out []protocol.DataInfo
	for _, b := range in {
		out = append(out, f.RecvData(b)...)
	}
	return out
}

func sendThrough(f Filter, in []protocol.DataInfo) []protocol.DataInfo {
	var out []protocol.DataInfo
	for _, b := range in {
		out = append(out, f.SendData(b)...)
	}
	return out
}

// stageReporter routes the out-of-band output of filter idx.
type stageReporter struct {
	chain *Chain
	idx   int
}

func (r *stageReporter) SendData(info protocol.DataInfo) {
	bufs := r.chain.sendBelow(r.idx, info)
	if r.chain.reporter == nil {
		return
	}
	for _, b := range bufs {
		r.chain.reporter.SendData(b)
	}
}

func (r *stageReporter) ReportError(err error) {
	name := r.chain.filters[r.idx].Name()
	observability.RecordPipelineError("filter")
	log.Warn().Str("filter", name).Err(err).Msg("filter_error")
	if r.chain.reporter != nil {
		r.chain.reporter.ReportError(fmt.Errorf("filter %s: %w", name, err))
	}
}

func (r *stageReporter) InterPluginConfig(props map[string]any) {
	for i, f := range r.chain.filters {
		if i != r.idx {
			f.ApplyInterPluginConfig(props)
		}
	}
	if r.chain.reporter != nil {
		r.chain.reporter.InterPluginConfig(props)
	}
}
