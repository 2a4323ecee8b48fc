package metadata

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Snehagupta1907/monad-journal/internal/domain"
)

func draft() domain.DraftEntry {
	return domain.DraftEntry{
		Title:     "Day one",
		Content:   "Shipped the indexer.",
		Date:      "2024-01-03",
		Author:    "0x1111111111111111111111111111111111111111",
		Timestamp: 1704240000000,
	}
}

func TestAssembleAppendsEllipsisUnconditionally(t *testing.T) {
	d := draft()
	d.Content = strings.Repeat("A", 50)

	m, err := Assemble(d, "")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("A", 50)+"...", m.Description)
}

func TestAssembleTruncatesLongContent(t *testing.T) {
	d := draft()
	d.Content = strings.Repeat("é", 150)

	m, err := Assemble(d, "")
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 100)+"...", m.Description)
}

func TestAssembleImage(t *testing.T) {
	m, err := Assemble(draft(), "")
	require.NoError(t, err)
	require.Equal(t, DefaultFallbackImage, m.Image)

	m, err = Assemble(draft(), "ipfs://bafyimage")
	require.NoError(t, err)
	require.Equal(t, "ipfs://bafyimage", m.Image)

	m, err = NewAssembler("https://example.com/blank.png").Assemble(draft(), "")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/blank.png", m.Image)
}

func TestAssembleExternalURL(t *testing.T) {
	m, err := Assemble(draft(), "")
	require.NoError(t, err)
	require.Nil(t, m.ExternalURL)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"external_url":null`)

	d := draft()
	d.PortfolioURL = "https://me.example.com"
	m, err = Assemble(d, "")
	require.NoError(t, err)
	require.NotNil(t, m.ExternalURL)
	require.Equal(t, "https://me.example.com", *m.ExternalURL)
}

func TestAssembleAttributes(t *testing.T) {
	m, err := Assemble(draft(), "")
	require.NoError(t, err)
	require.Equal(t, []domain.Attribute{{TraitType: domain.TraitDate, Value: "2024-01-03"}}, m.Attributes)

	d := draft()
	d.Todos = &domain.TodoStats{Total: 5, Completed: 2}
	m, err = Assemble(d, "")
	require.NoError(t, err)
	require.Len(t, m.Attributes, 3)
	require.Equal(t, domain.TodoStats{Total: 5, Completed: 2}, m.TodoStats())
}

func TestAssembleValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.DraftEntry)
		want   string
	}{
		{name: "missing title", mutate: func(d *domain.DraftEntry) { d.Title = "  " }, want: "title"},
		{name: "missing content", mutate: func(d *domain.DraftEntry) { d.Content = "" }, want: "content"},
		{name: "missing both", mutate: func(d *domain.DraftEntry) { d.Title, d.Content = "", "" }, want: "title, content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft()
			tt.mutate(&d)
			_, err := Assemble(d, "")
			require.ErrorIs(t, err, domain.ErrValidation)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}
