// Package report builds derived read-only views over the domain
// collections. Everything is recomputed on demand from the current
// collections; nothing is maintained incrementally.
package report

import (
	"sort"

	"github.com/gartstein/commtrack/internal/crm/models"
)

// DefaultTopCompanies is how many companies the ranking keeps.
const DefaultTopCompanies = 5

// MonthCount is the number of communications in one calendar month.
type MonthCount struct {
	// Month is a YYYY-MM key. Ascending lexicographic order is
	// chronological for this format.
	Month string
	Count int
}

// TypeCount is the number of communications of one logged type.
type TypeCount struct {
	Type  string
	Count int
}

// CompanyCount ranks a company by how often it was contacted.
type CompanyCount struct {
	CompanyID int64
	Name      string
	Count     int
}

// Stats is the full report snapshot.
type Stats struct {
	TotalCompanies      int
	TotalCommunications int
	// AveragePerCompany is 0 when there are no companies.
	AveragePerCompany float64
	ByMonth           []MonthCount
	ByType            []TypeCount
	TopCompanies      []CompanyCount
}

// Build computes the report over the given collections. topN bounds the
// company ranking; non-positive values fall back to DefaultTopCompanies.
func Build(companies []models.Company, communications []models.Communication, topN int) Stats {
	if topN < 1 {
		topN = DefaultTopCompanies
	}

	stats := Stats{
		TotalCompanies:      len(companies),
		TotalCommunications: len(communications),
	}
	if len(companies) > 0 {
		stats.AveragePerCompany = float64(len(communications)) / float64(len(companies))
	}

	byMonth := make(map[string]int)
	byType := make(map[string]int)
	perCompany := make(map[int64]int)
	for _, c := range communications {
		byMonth[c.Date.UTC().Format("2006-01")]++
		byType[c.Type]++
		perCompany[c.CompanyID]++
	}

	for month, count := range byMonth {
		stats.ByMonth = append(stats.ByMonth, MonthCount{Month: month, Count: count})
	}
	sort.Slice(stats.ByMonth, func(i, j int) bool {
		return stats.ByMonth[i].Month < stats.ByMonth[j].Month
	})

	for typ, count := range byType {
		stats.ByType = append(stats.ByType, TypeCount{Type: typ, Count: count})
	}
	sort.Slice(stats.ByType, func(i, j int) bool {
		return stats.ByType[i].Type < stats.ByType[j].Type
	})

	// Rank in company list order so equal counts keep that order.
	ranked := make([]CompanyCount, 0, len(companies))
	for _, c := range companies {
		ranked = append(ranked, CompanyCount{CompanyID: c.ID, Name: c.Name, Count: perCompany[c.ID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	stats.TopCompanies = ranked

	return stats
}
