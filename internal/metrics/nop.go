// Package metrics holds the default metrics collector of wukong components.
package metrics

import "github.com/arloliu/wukong/types"

// Nop drops every observation. Routers configured without a collector use it.
type Nop struct{}

var _ types.MetricsCollector = Nop{}

func (Nop) IncRequestTotal(string)                 {}
func (Nop) IncRequestError(string)                 {}
func (Nop) ObserveRequestDuration(string, float64) {}
func (Nop) IncFailoverTotal(string, string)        {}
func (Nop) IncRetryCycle()                         {}
func (Nop) IncPoolExhausted()                      {}
func (Nop) IncRefreshTotal()                       {}
func (Nop) IncRefreshError()                       {}
func (Nop) SetPoolSize(int)                        {}

// OrNop returns c, or Nop when c is nil.
func OrNop(c types.MetricsCollector) types.MetricsCollector {
	if c == nil {
		return Nop{}
	}

	return c
}
