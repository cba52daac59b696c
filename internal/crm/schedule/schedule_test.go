package schedule

import (
	"testing"
	"time"

	"github.com/gartstein/commtrack/internal/crm/models"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC)

func company(id int64, periodicity int) models.Company {
	return models.Company{ID: id, Name: "Acme", CommunicationPeriodicity: periodicity}
}

func TestNextContactDateNoHistory(t *testing.T) {
	got := NextContactDate(company(1, 30), nil, today)
	assert.Equal(t, today, got, "a company with no communications is due immediately")
}

func TestNextContactDateAddsPeriodicity(t *testing.T) {
	last := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	comms := []models.Communication{
		{ID: 1, CompanyID: 1, Type: "Email", Date: last.AddDate(0, 0, -5)},
		{ID: 2, CompanyID: 1, Type: "Phone Call", Date: last},
		{ID: 3, CompanyID: 2, Type: "Email", Date: last.AddDate(0, 0, 10)}, // other company
	}

	got := NextContactDate(company(1, 7), comms, today)
	assert.Equal(t, last.AddDate(0, 0, 7), got)
}

func TestDueState(t *testing.T) {
	tests := []struct {
		name     string
		lastDays int // days before today of the last communication
		period   int
		want     State
	}{
		{name: "overdue", lastDays: 31, period: 30, want: StateOverdue},
		{name: "due on the exact boundary", lastDays: 30, period: 30, want: StateDue},
		{name: "upcoming", lastDays: 10, period: 30, want: StateUpcoming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comms := []models.Communication{{
				ID:        1,
				CompanyID: 1,
				Type:      "Email",
				// Different time-of-day than today; must not matter.
				Date: today.AddDate(0, 0, -tt.lastDays).Add(5 * time.Hour),
			}}
			assert.Equal(t, tt.want, DueState(company(1, tt.period), comms, today))
		})
	}
}

func TestDueStateNoHistoryIsDueToday(t *testing.T) {
	assert.Equal(t, StateDue, DueState(company(1, 30), nil, today))
}

func TestStateForUnknownCompany(t *testing.T) {
	companies := []models.Company{company(1, 30)}
	assert.Equal(t, StateUnknown, StateFor(companies, nil, 99, today))
}

func TestSummarize(t *testing.T) {
	companies := []models.Company{
		company(1, 30), // overdue
		company(2, 30), // due today
		company(3, 30), // upcoming
	}
	comms := []models.Communication{
		{ID: 1, CompanyID: 1, Type: "Email", Date: today.AddDate(0, 0, -45)},
		{ID: 2, CompanyID: 2, Type: "Email", Date: today.AddDate(0, 0, -30)},
		{ID: 3, CompanyID: 3, Type: "Email", Date: today.AddDate(0, 0, -1)},
	}

	summary := Summarize(companies, comms, today)
	assert.Equal(t, []int64{1}, summary.Overdue)
	assert.Equal(t, []int64{2}, summary.DueToday)
	assert.Equal(t, 2, summary.Total())
}

// fakeSource counts reads so memoization is observable.
type fakeSource struct {
	revision uint64
	reads    int

	companies      []models.Company
	communications []models.Communication
}

func (f *fakeSource) Revision() uint64 { return f.revision }

func (f *fakeSource) Companies() []models.Company {
	f.reads++
	return f.companies
}

func (f *fakeSource) Communications() []models.Communication {
	return f.communications
}

func TestSummarizerMemoizes(t *testing.T) {
	src := &fakeSource{
		revision:  1,
		companies: []models.Company{company(1, 30)},
	}
	var z Summarizer

	first := z.Summary(src, today)
	assert.Equal(t, []int64{1}, first.DueToday)
	assert.Equal(t, 1, src.reads)

	// Same revision, same day, later time-of-day: cached.
	z.Summary(src, today.Add(2*time.Hour))
	assert.Equal(t, 1, src.reads)

	// A mutation invalidates the cache.
	src.revision = 2
	z.Summary(src, today)
	assert.Equal(t, 2, src.reads)

	// So does a day rollover.
	z.Summary(src, today.AddDate(0, 0, 1))
	assert.Equal(t, 3, src.reads)
}
