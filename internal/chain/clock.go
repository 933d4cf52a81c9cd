// Package chain provides local implementations of the external time source
// and authorization collaborators.
package chain

import (
	"time"

	"github.com/openpredict/marketd/internal/domain"
)

// SystemClock derives a chain time from the wall clock, assuming one block
// per domain.BlockMillis since the unix epoch. It satisfies the monotonicity
// the scheduler needs when no real chain drives the daemon.
type SystemClock struct{}

// Now returns the current chain time.
func (SystemClock) Now() domain.ChainTime {
	ms := uint64(time.Now().UnixMilli())
	return domain.ChainTime{
		Height: ms / domain.BlockMillis,
		UnixMs: ms,
	}
}
