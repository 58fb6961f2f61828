package strain

import (
	"fmt"
	"sync"
)

// ChannelReporter forwards every reported MeasurementUnit to a channel
// for the surrounding system to consume. Report never blocks: if the
// channel buffer is full the unit is dropped and a reporting error is
// returned, so a slow consumer cannot stall dispatch to other Reporters.
type ChannelReporter struct {
	mu      sync.Mutex
	units   chan *MeasurementUnit
	stopped bool
}

// NewChannelReporter returns a new ChannelReporter buffering up to n
// units.
func NewChannelReporter(n int) *ChannelReporter {
	return &ChannelReporter{units: make(chan *MeasurementUnit, n)}
}

// Units returns the channel reported units are forwarded to. The channel
// is closed when the reporter is stopped.
func (c *ChannelReporter) Units() <-chan *MeasurementUnit { return c.units }

// SetRunInfo implements Reporter. ChannelReporter keeps no lifecycle
// state of its own.
func (c *ChannelReporter) SetRunInfo(RunInfo) {}

// Report implements Reporter. The send is guarded by the same lock Stop
// closes the channel under, so a Report racing Stop errors out instead
// of sending on a closed channel.
func (c *ChannelReporter) Report(mu *MeasurementUnit) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return fmt.Errorf("reporter stopped, dropping %s", mu)
	}
	select {
	case c.units <- mu:
		return nil
	default:
		return fmt.Errorf("channel full, dropping %s", mu)
	}
}

// Reset implements Reporter by draining units buffered so far. On a
// stopped reporter it drains whatever is left and returns.
func (c *ChannelReporter) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case _, ok := <-c.units:
			if !ok {
				return nil
			}
		default:
			return nil
		}
	}
}

// Start implements Reporter.
func (c *ChannelReporter) Start() error { return nil }

// Stop implements Reporter by closing the unit channel. Stopping twice
// has no further effect.
func (c *ChannelReporter) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return nil
	}
	c.stopped = true
	close(c.units)
	return nil
}

var _ Reporter = (*ChannelReporter)(nil)
