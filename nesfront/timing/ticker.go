package timing

import "time"

// TickerLimiter paces frames with a time.Ticker. Ticks that arrive while the
// loop is busy are dropped by the runtime, so a slow frame never queues up a
// burst of notifications.
type TickerLimiter struct {
	period time.Duration
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return NewTickerLimiterWithPeriod(FrameDuration())
}

func NewTickerLimiterWithPeriod(period time.Duration) *TickerLimiter {
	return &TickerLimiter{
		period: period,
		ticker: time.NewTicker(period),
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.period)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
