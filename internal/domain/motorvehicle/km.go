package motorvehicle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MinLogbookDays is the minimum span of a valid logbook period, 12 weeks
const MinLogbookDays = 84

// KMSummary aggregates kilometre evidence for a vehicle over the period
type KMSummary struct {
	TotalKM            decimal.Decimal  `json:"total_km"`
	BusinessKM         decimal.Decimal  `json:"business_km"`
	PrivateKM          decimal.Decimal  `json:"private_km"`
	BusinessPercentage decimal.Decimal  `json:"business_percentage"`
	LogbookPercentage  *decimal.Decimal `json:"logbook_percentage,omitempty"`
}

// NewKMSummary builds a summary from raw kilometre figures. The business
// percentage is business over total, rounded to 2 decimals; zero total
// kilometres yields 0%, not an error.
func NewKMSummary(totalKM, businessKM, privateKM decimal.Decimal) KMSummary {
	s := KMSummary{
		TotalKM:    totalKM,
		BusinessKM: businessKM,
		PrivateKM:  privateKM,
	}
	if totalKM.IsPositive() {
		s.BusinessPercentage = businessKM.Div(totalKM).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return s
}

// ReconcileNote reports a mismatch between business + private and total
// kilometres. Empty when the figures agree within 1 km.
func (s KMSummary) ReconcileNote() string {
	if !s.TotalKM.IsPositive() {
		return ""
	}
	sum := s.BusinessKM.Add(s.PrivateKM)
	if sum.Sub(s.TotalKM).Abs().GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Sprintf("KM totals don't match: business (%s) + private (%s) = %s, but total is %s",
			s.BusinessKM, s.PrivateKM, sum, s.TotalKM)
	}
	return ""
}

// LogbookPeriod is a recorded logbook span. Short periods are kept but
// flagged invalid for admin judgment rather than rejected outright.
type LogbookPeriod struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Valid          bool      `json:"valid"`
	ValidationNote string    `json:"validation_note,omitempty"`
}

// NewLogbookPeriod validates a logbook span against the 84-day minimum
func NewLogbookPeriod(start, end time.Time) LogbookPeriod {
	p := LogbookPeriod{Start: start, End: end}
	days := p.Days()
	switch {
	case end.Before(start):
		p.ValidationNote = "Logbook end date is before its start date"
	case days < MinLogbookDays:
		p.ValidationNote = fmt.Sprintf("Logbook period is %d days, below the %d-day (12 week) minimum",
			days, MinLogbookDays)
	default:
		p.Valid = true
	}
	return p
}

// Days returns the inclusive day count of the period
func (p LogbookPeriod) Days() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}
