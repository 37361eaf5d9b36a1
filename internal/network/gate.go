package network

import (
	"log/slog"
	"sync/atomic"
)

// Gate is the shared online/offline signal. It is driven from outside the
// engine; components only read it.
type Gate struct {
	online   atomic.Bool
	log      *slog.Logger
	onChange func(online bool)
}

func NewGate(online bool, log *slog.Logger) *Gate {
	g := &Gate{log: log.With("component", "network")}
	g.online.Store(online)

	return g
}

// OnChange registers a callback invoked after every transition.
func (g *Gate) OnChange(fn func(online bool)) {
	g.onChange = fn
}

func (g *Gate) Online() bool {
	return g.online.Load()
}

// Set updates the signal and reports whether it changed.
func (g *Gate) Set(online bool) bool {
	if g.online.Swap(online) == online {
		return false
	}

	g.log.Info("network state changed", "online", online)

	if g.onChange != nil {
		g.onChange(online)
	}

	return true
}
