package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time.Now so services that stamp unlock expirations and
// ledger updates can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func New() Clock {
	return systemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
