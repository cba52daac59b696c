// Package sequence validates that logged communications follow the
// admin-defined order of communication methods.
package sequence

import (
	"fmt"
	"sort"
	"strings"

	e "github.com/gartstein/commtrack/internal/crm/errors"
	"github.com/gartstein/commtrack/internal/crm/models"
)

// Ordered returns the methods sorted ascending by Sequence. The sort is
// stable, so methods sharing a Sequence value keep their configured order.
func Ordered(methods []models.CommunicationMethod) []models.CommunicationMethod {
	out := append([]models.CommunicationMethod(nil), methods...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sequence < out[j].Sequence
	})
	return out
}

// Latest picks the communication that counts as "last" for validation:
// maximum date, ties broken by highest id. Ids are monotonic within a
// process, so the tie winner is the most recently created record.
func Latest(history []models.Communication) (models.Communication, bool) {
	var last models.Communication
	found := false
	for _, c := range history {
		if !found || c.Date.After(last.Date) || (c.Date.Equal(last.Date) && c.ID > last.ID) {
			last = c
			found = true
		}
	}
	return last, found
}

func indexOf(ordered []models.CommunicationMethod, name string) int {
	for i, m := range ordered {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// ValidateNext decides whether candidateType may be logged next for a
// company whose prior communications are history. ordered must come from
// Ordered. The rules:
//
//   - with no history, only the first method in the sequence is legal;
//   - repeating the last logged method is always legal;
//   - advancing one step is always legal;
//   - advancing further is legal only if no mandatory method is skipped;
//   - moving backwards is never legal.
//
// A last-logged type that no longer resolves to a configured method (the
// method was deleted or renamed) is treated as preceding the whole
// sequence, so the history effectively restarts.
func ValidateNext(candidateType string, ordered []models.CommunicationMethod, history []models.Communication) error {
	if len(ordered) == 0 {
		return e.ErrNotConfigured
	}

	candidateIndex := indexOf(ordered, candidateType)
	if candidateIndex < 0 {
		return fmt.Errorf("%w: %q is not in the configured sequence", e.ErrSequence, candidateType)
	}

	last, ok := Latest(history)
	if !ok {
		if candidateIndex != 0 {
			return fmt.Errorf("%w: first communication must be %s", e.ErrSequence, ordered[0].Name)
		}
		return nil
	}

	lastIndex := indexOf(ordered, last.Type)
	if candidateIndex < lastIndex {
		return fmt.Errorf("%w: cannot use %s after %s; follow the sequence", e.ErrSequence, candidateType, last.Type)
	}
	if candidateIndex <= lastIndex+1 {
		return nil
	}

	var skipped []string
	for _, m := range ordered[lastIndex+1 : candidateIndex] {
		if m.Mandatory {
			skipped = append(skipped, m.Name)
		}
	}
	if len(skipped) > 0 {
		return fmt.Errorf("%w: must complete mandatory methods first: %s", e.ErrSequence, strings.Join(skipped, ", "))
	}
	return nil
}
