package metrics

import "time"

// Recorder is what the payment service and monitor report to.
type Recorder interface {
	PaymentCreated(currency string)
	StatusChanged(currency, status string)
	SweepFinished(currency, outcome string)
	TickFailed(currency, reason string)
	ObserveTick(currency string, d time.Duration)
}

type Noop struct{}

func (Noop) PaymentCreated(string)             {}
func (Noop) StatusChanged(string, string)      {}
func (Noop) SweepFinished(string, string)      {}
func (Noop) TickFailed(string, string)         {}
func (Noop) ObserveTick(string, time.Duration) {}
