package sources

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/hu-holidays/internal/holiday"
)

type stubAdapter struct {
	name     string
	tier     Tier
	coverage YearRange
}

func (s *stubAdapter) Name() string        { return s.name }
func (s *stubAdapter) URL(int) string      { return "https://example.test/" + s.name }
func (s *stubAdapter) Coverage() YearRange { return s.coverage }
func (s *stubAdapter) Tier() Tier          { return s.tier }

func (s *stubAdapter) Fetch(ctx context.Context, year int) (holiday.YearResult, error) {
	return holiday.YearResult{}, &FetchError{Source: s.name, Year: year, Kind: KindUnsupported}
}

func names(adapters []Adapter) []string {
	out := make([]string, len(adapters))
	for i, a := range adapters {
		out[i] = a.Name()
	}
	return out
}

func TestNewRegistry_RanksByTierStable(t *testing.T) {
	reg := NewRegistry(
		&stubAdapter{name: "intl-a", tier: TierInternational},
		&stubAdapter{name: "dom-a", tier: TierDomestic},
		&stubAdapter{name: "computed", tier: TierComputed},
		&stubAdapter{name: "en-hu", tier: TierEnglishHungarian},
		&stubAdapter{name: "dom-b", tier: TierDomestic},
		&stubAdapter{name: "intl-b", tier: TierInternational},
	)

	entries := reg.Entries()
	require.Len(t, entries, 6)

	var got []string
	for i, e := range entries {
		assert.Equal(t, i+1, e.Rank)
		got = append(got, e.Adapter.Name())
	}
	assert.Equal(t, []string{"dom-a", "dom-b", "en-hu", "intl-a", "intl-b", "computed"}, got)

	// Entries hands out a copy
	entries[0].Rank = 99
	assert.Equal(t, 1, reg.Entries()[0].Rank)
}

func TestDefaultAdapters(t *testing.T) {
	deps := testDeps(t, &fakeClient{})

	t.Run("production catalog", func(t *testing.T) {
		reg := NewRegistry(DefaultAdapters(deps, Catalog{})...)
		assert.Equal(t, []string{
			"MFA.gov.hu (Official)",
			"PontosIdo.com",
			"SzakmaiKamara.hu",
			"Unnepnapok.com",
			"PublicHolidays.hu",
			"TimeAndDate.com",
			"OfficeHolidays.com",
		}, names(Select(2025, reg)))

		mfa := reg.Entries()[0].Adapter
		assert.Equal(t, YearRange{Min: 2024, Max: 2026}, mfa.Coverage())
		assert.Equal(t, TierDomestic, mfa.Tier())
	})

	t.Run("statutory is last", func(t *testing.T) {
		reg := NewRegistry(DefaultAdapters(deps, Catalog{Statutory: true})...)
		entries := reg.Entries()
		require.Len(t, entries, 8)
		assert.Equal(t, "Statutory (computed)", entries[7].Adapter.Name())
		assert.Equal(t, TierComputed, entries[7].Adapter.Tier())
	})

	t.Run("disabled sources", func(t *testing.T) {
		adapters := DefaultAdapters(deps, Catalog{Disabled: []string{"pontosido.com", " TimeAndDate.com "}})
		assert.NotContains(t, names(adapters), "PontosIdo.com")
		assert.NotContains(t, names(adapters), "TimeAndDate.com")
		assert.Len(t, adapters, 5)
	})
}

func TestSelect(t *testing.T) {
	reg := NewRegistry(
		&stubAdapter{name: "narrow", tier: TierDomestic, coverage: YearRange{Min: 2024, Max: 2026}},
		&stubAdapter{name: "wide", tier: TierDomestic, coverage: YearRange{Min: 2015, Max: 2035}},
		&stubAdapter{name: "intl", tier: TierInternational, coverage: YearRange{Min: 2020, Max: 2030}},
	)

	tests := []struct {
		name string
		year int
		want []string
	}{
		{"all cover", 2025, []string{"narrow", "wide", "intl"}},
		{"coverage filter keeps rank order", 2028, []string{"wide", "intl"}},
		{"only one", 2033, []string{"wide"}},
		{"nobody covers", 1990, []string{"narrow", "wide", "intl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Select(tt.year, reg)))
			// deterministic
			assert.Equal(t, names(Select(tt.year, reg)), names(Select(tt.year, reg)))
		})
	}
}

func TestSelect_UncoveredYearSelfRejects(t *testing.T) {
	reg := NewRegistry(DefaultAdapters(testDeps(t, &fakeClient{}), Catalog{})...)

	for _, a := range Select(1990, reg) {
		_, err := a.Fetch(context.Background(), 1990)
		assert.True(t, errors.Is(err, ErrUnsupported), "%s: %v", a.Name(), err)
	}
}

func TestExplain(t *testing.T) {
	reg := NewRegistry(
		&stubAdapter{name: "narrow", tier: TierDomestic, coverage: YearRange{Min: 2024, Max: 2026}},
		&stubAdapter{name: "wide", tier: TierEnglishHungarian, coverage: YearRange{Min: 2015, Max: 2035}},
	)

	choices := Explain(2030, reg)
	require.Len(t, choices, 2)

	assert.Equal(t, "narrow", choices[0].Source)
	assert.False(t, choices[0].Selected)
	assert.Equal(t, "coverage 2024-2026 excludes 2030", choices[0].Reason)

	assert.Equal(t, 2, choices[1].Rank)
	assert.True(t, choices[1].Selected)
	assert.Equal(t, "english-hungarian", choices[1].Tier)
	assert.Equal(t, "covers 2030", choices[1].Reason)

	for _, c := range Explain(1990, reg) {
		assert.True(t, c.Selected)
	}
}

func TestYearRange(t *testing.T) {
	r := RelativeRange(2025, -3, 1)
	assert.Equal(t, YearRange{Min: 2022, Max: 2026}, r)
	assert.True(t, r.Contains(2022))
	assert.True(t, r.Contains(2026))
	assert.False(t, r.Contains(2027))
	assert.Equal(t, "2022-2026", r.String())
}
