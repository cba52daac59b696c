// Package schedule computes when each company is next due for contact and
// classifies its due state relative to a reference day.
package schedule

import (
	"sync"
	"time"

	"github.com/gartstein/commtrack/internal/crm/models"
)

// State classifies a company's contact status.
type State string

const (
	StateOverdue  State = "overdue"
	StateDue      State = "due"
	StateUpcoming State = "upcoming"
	// StateUnknown is reported for a company id that does not resolve.
	StateUnknown State = "unknown"
)

// NextContactDate returns the date the company must next be contacted.
// With no logged communications the company is due immediately, so the
// result is now. Otherwise it is the most recent communication date plus
// the company's periodicity in days. Communications for other companies
// are ignored.
func NextContactDate(company models.Company, communications []models.Communication, now time.Time) time.Time {
	var last time.Time
	found := false
	for _, c := range communications {
		if c.CompanyID != company.ID {
			continue
		}
		if !found || c.Date.After(last) {
			last = c.Date
			found = true
		}
	}
	if !found {
		return now
	}
	return last.AddDate(0, 0, company.CommunicationPeriodicity)
}

// DueState compares the next contact date against today at day
// granularity; time-of-day never affects the classification.
func DueState(company models.Company, communications []models.Communication, today time.Time) State {
	due := day(NextContactDate(company, communications, today))
	ref := day(today)
	switch {
	case due.Before(ref):
		return StateOverdue
	case due.Equal(ref):
		return StateDue
	default:
		return StateUpcoming
	}
}

// StateFor resolves companyID in companies and classifies it. An id with
// no matching company yields StateUnknown rather than an error, so stale
// references stay harmless.
func StateFor(companies []models.Company, communications []models.Communication, companyID int64, today time.Time) State {
	for _, c := range companies {
		if c.ID == companyID {
			return DueState(c, communications, today)
		}
	}
	return StateUnknown
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Summary lists the companies needing attention, in company list order.
type Summary struct {
	Overdue  []int64
	DueToday []int64
}

// Total is the notification count: overdue plus due today.
func (s Summary) Total() int {
	return len(s.Overdue) + len(s.DueToday)
}

// Summarize partitions every company by due state and keeps the two
// actionable buckets.
func Summarize(companies []models.Company, communications []models.Communication, today time.Time) Summary {
	var out Summary
	for _, c := range companies {
		switch DueState(c, communications, today) {
		case StateOverdue:
			out.Overdue = append(out.Overdue, c.ID)
		case StateDue:
			out.DueToday = append(out.DueToday, c.ID)
		}
	}
	return out
}

// Source is the slice of the domain store the summarizer reads.
type Source interface {
	Revision() uint64
	Companies() []models.Company
	Communications() []models.Communication
}

// Summarizer memoizes Summarize keyed on the store revision and the
// calendar day, so render-time polling does not rescan unchanged
// collections.
type Summarizer struct {
	mu       sync.Mutex
	revision uint64
	day      time.Time
	cached   Summary
	valid    bool
}

func (z *Summarizer) Summary(src Source, today time.Time) Summary {
	z.mu.Lock()
	defer z.mu.Unlock()

	rev := src.Revision()
	ref := day(today)
	if z.valid && z.revision == rev && z.day.Equal(ref) {
		return z.cached
	}
	z.cached = Summarize(src.Companies(), src.Communications(), today)
	z.revision = rev
	z.day = ref
	z.valid = true
	return z.cached
}
