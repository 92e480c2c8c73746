// internal/service/booking/pricing.go
package booking

import (
	"errors"
	"math"
	"strings"
	"time"

	"adscreen-service/internal/domain/screen"
	"adscreen-service/internal/pkg/money"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// ErrDurationOutOfBounds is returned when the requested duration falls
// outside the pricing option's min/max.
var ErrDurationOutOfBounds = errors.New("duration outside pricing option bounds")

// Quote is the server computed price of a booking request.
type Quote struct {
	Duration        int
	Unit            screen.DurationUnit
	DurationDays    int
	UnitPrice       decimal.Decimal
	NumberOfScreens int
	Total           decimal.Decimal
}

// DurationDays counts calendar days in [start, end], end inclusive.
func DurationDays(start, end time.Time) int {
	return int(math.Ceil(float64(end.Sub(start))/float64(day))) + 1
}

// DurationIn expresses the range in unit. Partial units round up. A range
// given as calendar dates holds whole days, so hourly options bill 24 hours
// for each of them.
func DurationIn(unit screen.DurationUnit, start, end time.Time) int {
	days := DurationDays(start, end)
	switch unit {
	case screen.UnitHour:
		if isCalendarDate(start) && isCalendarDate(end) {
			return days * 24
		}
		hours := int(math.Ceil(end.Sub(start).Hours()))
		if hours < 1 {
			hours = 1
		}
		return hours
	case screen.UnitWeek:
		return (days + 6) / 7
	case screen.UnitMonth:
		return (days + 29) / 30
	default:
		return days
	}
}

func isCalendarDate(t time.Time) bool {
	return t.Equal(t.Truncate(day)) && t.Location() == time.UTC
}

// Calculate prices a booking. Without an option the location's daily price
// applies. screens <= 0 means one screen.
func Calculate(loc *screen.Location, opt *screen.PricingOption, start, end time.Time, screens int) (*Quote, error) {
	if screens <= 0 {
		screens = 1
	}

	q := &Quote{
		Unit:            screen.UnitDay,
		UnitPrice:       loc.DailyPrice,
		DurationDays:    DurationDays(start, end),
		NumberOfScreens: screens,
	}
	if opt != nil {
		q.Unit = opt.Unit
		q.UnitPrice = opt.Price
	}

	q.Duration = DurationIn(q.Unit, start, end)
	if opt != nil && !opt.Allows(q.Duration) {
		return nil, ErrDurationOutOfBounds
	}

	q.Total = money.Round(q.UnitPrice.Mul(decimal.NewFromInt(int64(q.Duration))).Mul(decimal.NewFromInt(int64(screens))))
	return q, nil
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
