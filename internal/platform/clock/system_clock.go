package clock

import (
	"time"

	clockport "github.com/Overland-East-Bay/club-roster/internal/ports/out/clock"
)

var _ clockport.Clock = SystemClock{}

// SystemClock reads wall-clock time in UTC, truncated to milliseconds so
// snapshot timestamps survive a JSON round trip unchanged.
type SystemClock struct{}

func NewSystemClock() SystemClock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
