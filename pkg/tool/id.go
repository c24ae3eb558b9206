package tool

import (
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// AccountingPeriod formats t as the year-month bucket commissions accrue to.
func AccountingPeriod(t time.Time) string {
	return t.UTC().Format("2006-01")
}
