// Package logging holds the logger plumbing shared by wukong packages.
package logging

import "github.com/arloliu/wukong/types"

// Nop discards every message. Components configured without a logger use it.
type Nop struct{}

var _ types.Logger = Nop{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

// OrNop returns l, or Nop when l is nil.
func OrNop(l types.Logger) types.Logger {
	if l == nil {
		return Nop{}
	}

	return l
}
