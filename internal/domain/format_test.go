package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestShortAddress(t *testing.T) {
	tests := []struct {
		name     string
		addr     string
		expected string
	}{
		{
			name:     "full address",
			addr:     "0xE2654a34B262aB6399F22a7A75981f2E79DEfbD1",
			expected: "0xE265...fbD1",
		},
		{
			name:     "short input kept as-is",
			addr:     "0x1234",
			expected: "0x1234",
		},
		{
			name:     "empty",
			addr:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortAddress(tt.addr); got != tt.expected {
				t.Errorf("ShortAddress() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Jan 3, 2024" {
		t.Errorf("FormatDate() = %q, want %q", got, "Jan 3, 2024")
	}
}

func TestParseEntryDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "iso date",
			input: "2024-01-02",
			want:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "rfc3339",
			input: "2024-01-02T10:00:00+02:00",
			want:  time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "garbage",
			input: "yesterday",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEntryDate(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseEntryDate() ok = %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseEntryDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetadataAttributes(t *testing.T) {
	m := &Metadata{
		Attributes: []Attribute{
			{TraitType: TraitDate, Value: "2024-01-03"},
			{TraitType: TraitTodoCount, Value: float64(4)},
			{TraitType: TraitCompletedTodos, Value: "3"},
		},
	}

	if got := m.EntryDate(); got != "2024-01-03" {
		t.Errorf("EntryDate() = %q, want %q", got, "2024-01-03")
	}

	stats := m.TodoStats()
	if stats.Total != 4 || stats.Completed != 3 {
		t.Errorf("TodoStats() = %+v, want {4 3}", stats)
	}

	var empty *Metadata
	if got := empty.EntryDate(); got != "" {
		t.Errorf("nil EntryDate() = %q, want empty", got)
	}
	if got := empty.TodoStats(); got != (TodoStats{}) {
		t.Errorf("nil TodoStats() = %+v, want zero", got)
	}
}

func TestMintErrorMatchesKindAndCause(t *testing.T) {
	cause := errors.New("execution reverted")
	err := fmt.Errorf("mint: %w", &MintError{
		Kind:      ErrMintFailed,
		Submitted: true,
		TxHash:    "0xabc",
		Err:       cause,
	})

	if !errors.Is(err, ErrMintFailed) {
		t.Error("expected errors.Is(err, ErrMintFailed)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if errors.Is(err, ErrMintRejected) {
		t.Error("did not expect ErrMintRejected")
	}

	var me *MintError
	if !errors.As(err, &me) || !me.Submitted || me.TxHash != "0xabc" {
		t.Errorf("errors.As() = %+v", me)
	}

	if got := Kind(err); got != "mint_failed" {
		t.Errorf("Kind() = %q, want mint_failed", got)
	}
}
