package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		tag  string
		want Strategy
	}{
		{"rental", StrategyRental},
		{"appreciation", StrategyAppreciation},
		{"short_term_rental", StrategyShortTermRental},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseStrategy(tt.tag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.tag, got.String())
		})
	}

	for _, bad := range []string{"", "Rental", "flip", "str"} {
		_, err := ParseStrategy(bad)
		assert.True(t, errors.Is(err, ErrUnknownStrategy), "tag %q", bad)
	}
}

func TestStrategy_ZeroValueInvalid(t *testing.T) {
	var s Strategy
	assert.False(t, s.Valid())
	_, err := s.MarshalText()
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestStrategy_JSON(t *testing.T) {
	b, err := json.Marshal(ScoringContext{Strategy: StrategyShortTermRental, HorizonYears: 5})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"strategy":"short_term_rental"`)

	var ctx ScoringContext
	require.NoError(t, json.Unmarshal([]byte(`{"strategy":"appreciation","horizon_years":10}`), &ctx))
	assert.Equal(t, StrategyAppreciation, ctx.Strategy)
	assert.Equal(t, 10, ctx.HorizonYears)

	err = json.Unmarshal([]byte(`{"strategy":"flip"}`), &ctx)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestScoringContext_Validate(t *testing.T) {
	assert.NoError(t, ScoringContext{Strategy: StrategyRental, HorizonYears: -1}.Validate())
	assert.ErrorIs(t, ScoringContext{}.Validate(), ErrUnknownStrategy)
}

func TestExpenseBreakdown_Total(t *testing.T) {
	e := ExpenseBreakdown{PropertyTax: 1, Insurance: 2, Maintenance: 3, Management: 4, Vacancy: 5, HOA: 6}
	assert.Equal(t, 21.0, e.Total())
}
