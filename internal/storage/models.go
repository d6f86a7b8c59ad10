package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertEvent captures an emitted rate alert for auditing and cooldown
// inspection.
type AlertEvent struct {
	ID        int64
	Principal string
	AlertID   string
	Asset     string
	Observed  decimal.Decimal
	Threshold decimal.Decimal
	Direction string
	Channels  []string
	CreatedAt time.Time
}
