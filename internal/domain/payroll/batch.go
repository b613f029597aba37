package payroll

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"crewsite/internal/domain/attendance"
	"crewsite/internal/domain/worker"
)

// LineItem is one completed shift inside a worker's payroll entry. Subtotal is
// hours times the worker's hourly rate, rounded once at output.
type LineItem struct {
	WorkerID    string  `json:"worker_id"`
	SiteID      string  `json:"site_id"`
	ShiftDate   string  `json:"shift_date"` // YYYY-MM-DD, UTC day of clock-in
	HoursWorked float64 `json:"hours_worked"`
	Verified    bool    `json:"verified"`
	Subtotal    float64 `json:"subtotal"`
}

// Entry groups one worker's line items for the period. TotalHours and TotalPay
// are recomputed from the unrounded per-shift values, never stored separately,
// so they cannot drift from the line items.
type Entry struct {
	WorkerID    string     `json:"worker_id"`
	DisplayName string     `json:"display_name"`
	HourlyRate  float64    `json:"hourly_rate"`
	LineItems   []LineItem `json:"line_items"`
	TotalHours  float64    `json:"total_hours"`
	TotalPay    float64    `json:"total_pay"`
}

// Batch is the full payroll computation for one reporting period.
type Batch struct {
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	Entries         []Entry   `json:"entries"`
	GrandTotalHours float64   `json:"grand_total_hours"`
	GrandTotalPay   float64   `json:"grand_total_pay"`
}

var (
	ErrUnknownWorker = errors.New("attendance record references a worker with no pay profile")
	ErrInvalidPeriod = errors.New("period end cannot precede period start")
)

// Round2 rounds to two decimal places, half away from zero. Applied exactly
// once, at output boundaries (subtotals and totals).
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Aggregate turns closed attendance records plus pay profiles into a payroll
// batch for [periodStart, periodEnd] (both inclusive, compared against the
// clock-in time).
//
// Open shifts inside the period contribute nothing. A record whose worker has
// no profile fails the whole batch: a silently short payroll run is worse than
// a hard failure. Line items are ordered chronologically within an entry;
// entries are ordered by ascending worker ID so output is reproducible.
func Aggregate(records []*attendance.Record, profiles map[string]*worker.PayProfile, periodStart, periodEnd time.Time) (*Batch, error) {
	if periodEnd.Before(periodStart) {
		return nil, ErrInvalidPeriod
	}

	type accum struct {
		profile *worker.PayProfile
		items   []LineItem
		hours   float64 // unrounded running totals
		pay     float64
	}
	byWorker := make(map[string]*accum)

	// Chronological order inside each entry.
	sorted := make([]*attendance.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ClockInAt.Before(sorted[j].ClockInAt)
	})

	for _, record := range sorted {
		if record.ClockInAt.Before(periodStart) || record.ClockInAt.After(periodEnd) {
			continue
		}
		if record.Open() {
			continue
		}

		profile, ok := profiles[record.WorkerID]
		if !ok || profile == nil {
			return nil, fmt.Errorf("%w: worker %s", ErrUnknownWorker, record.WorkerID)
		}

		hours, err := record.HoursWorked()
		if err != nil {
			return nil, err
		}
		subtotal := hours * profile.HourlyRate

		acc := byWorker[record.WorkerID]
		if acc == nil {
			acc = &accum{profile: profile}
			byWorker[record.WorkerID] = acc
		}
		acc.items = append(acc.items, LineItem{
			WorkerID:    record.WorkerID,
			SiteID:      record.SiteID,
			ShiftDate:   record.ShiftDate(),
			HoursWorked: Round2(hours),
			Verified:    record.Status.Verified(),
			Subtotal:    Round2(subtotal),
		})
		acc.hours += hours
		acc.pay += subtotal
	}

	workerIDs := make([]string, 0, len(byWorker))
	for id := range byWorker {
		workerIDs = append(workerIDs, id)
	}
	sort.Strings(workerIDs)

	batch := &Batch{PeriodStart: periodStart.UTC(), PeriodEnd: periodEnd.UTC()}
	var grandHours, grandPay float64
	for _, id := range workerIDs {
		acc := byWorker[id]
		batch.Entries = append(batch.Entries, Entry{
			WorkerID:    id,
			DisplayName: acc.profile.DisplayName,
			HourlyRate:  acc.profile.HourlyRate,
			LineItems:   acc.items,
			TotalHours:  Round2(acc.hours),
			TotalPay:    Round2(acc.pay),
		})
		grandHours += acc.hours
		grandPay += acc.pay
	}
	batch.GrandTotalHours = Round2(grandHours)
	batch.GrandTotalPay = Round2(grandPay)

	return batch, nil
}
