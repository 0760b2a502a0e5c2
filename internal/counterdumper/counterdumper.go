// Package counterdumper contains a counter that periodically invokes a callback if the counter is not zero.
package counterdumper

import (
	"sync/atomic"
	"time"
)

const (
	callbackPeriod = 1 * time.Second
)

// CounterDumper is a counter that periodically invokes a callback if the counter is not zero.
// It is used to report dropped samples without flooding the log.
type CounterDumper struct {
	OnReport func(v uint64)

	counter *uint64

	terminate chan struct{}
	done      chan struct{}
}

// Start starts the counter.
func (c *CounterDumper) Start() {
	c.counter = new(uint64)
	c.terminate = make(chan struct{})
	c.done = make(chan struct{})

	go c.run()
}

// Stop stops the counter.
func (c *CounterDumper) Stop() {
	close(c.terminate)
	<-c.done
}

// Increase increases the counter value by 1.
func (c *CounterDumper) Increase() {
	atomic.AddUint64(c.counter, 1)
}

func (c *CounterDumper) run() {
	defer close(c.done)

	t := time.NewTicker(callbackPeriod)
	defer t.Stop()

	for {
		select {
		case <-c.terminate:
			if v := atomic.SwapUint64(c.counter, 0); v != 0 {
				c.OnReport(v)
			}
			return

		case <-t.C:
			if v := atomic.SwapUint64(c.counter, 0); v != 0 {
				c.OnReport(v)
			}
		}
	}
}
