package dao

import "time"

// Observer receives one event per template call
type Observer interface {
	ObserveStatement(op string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveStatement(string, time.Duration, error) {}
