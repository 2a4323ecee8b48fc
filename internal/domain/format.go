package domain

import (
	"fmt"
	"strconv"
	"time"
)

const (
	TraitDate           = "Date"
	TraitTodoCount      = "Todo Count"
	TraitCompletedTodos = "Completed Todos"

	// DisplayLayout renders dates as "Jan 3, 2024".
	DisplayLayout = "Jan 2, 2006"
)

// ShortAddress renders 0x1234...abcd style addresses.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// FormatDate renders t in DisplayLayout.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}

// ParseEntryDate accepts an ISO date or an RFC3339 timestamp.
func ParseEntryDate(s string) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// Attribute returns the value of the first attribute with the given trait type.
func (m *Metadata) Attribute(trait string) (any, bool) {
	if m == nil {
		return nil, false
	}
	for _, a := range m.Attributes {
		if a.TraitType == trait {
			return a.Value, true
		}
	}
	return nil, false
}

// EntryDate returns the Date attribute as a string, or "" when absent.
func (m *Metadata) EntryDate() string {
	v, ok := m.Attribute(TraitDate)
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// TodoStats reads the todo counters; missing or malformed values count as zero.
func (m *Metadata) TodoStats() TodoStats {
	total, _ := m.Attribute(TraitTodoCount)
	done, _ := m.Attribute(TraitCompletedTodos)
	return TodoStats{Total: toInt(total), Completed: toInt(done)}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}
