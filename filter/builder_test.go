package filter

import (
	"errors"
	"testing"

	"github.com/giygas/medref-api/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildConjunction(t *testing.T) {
	f, err := Build([]entities.FilterCondition{
		{Field: "metadata.gl_name", Value: "高血圧治療ガイドライン", Match: entities.Exact},
		{Field: "metadata.heading_1", Value: "診断", Match: entities.TextSearch},
	})
	require.NoError(t, err)

	require.Len(t, f.GetMust(), 2)
	assert.Empty(t, f.GetShould())
	assert.Empty(t, f.GetMustNot())

	first := f.GetMust()[0].GetField()
	assert.Equal(t, "metadata.gl_name", first.GetKey())
	assert.Equal(t, "高血圧治療ガイドライン", first.GetMatch().GetKeyword())

	second := f.GetMust()[1].GetField()
	assert.Equal(t, "metadata.heading_1", second.GetKey())
	assert.Equal(t, "診断", second.GetMatch().GetText())
}

func TestBuildDropsInvalidConditions(t *testing.T) {
	f, err := Build([]entities.FilterCondition{
		{Field: "", Value: "x", Match: entities.Exact},
		{Field: "metadata.disease_name", Value: "", Match: entities.TextSearch},
		{Field: "metadata.disease_name", Value: "感染性心内膜炎", Match: entities.TextSearch},
	})
	require.NoError(t, err)

	require.Len(t, f.GetMust(), 1)
	assert.Equal(t, "感染性心内膜炎", f.GetMust()[0].GetField().GetMatch().GetText())
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name       string
		conditions []entities.FilterCondition
	}{
		{"nil", nil},
		{"empty", []entities.FilterCondition{}},
		{"all invalid", []entities.FilterCondition{
			{Field: "metadata.title", Value: "  ", Match: entities.TextSearch},
			{Field: " ", Value: "x", Match: entities.Exact},
		}},
		{"unknown match kind", []entities.FilterCondition{
			{Field: "metadata.title", Value: "x", Match: entities.MatchKind(42)},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Build(tt.conditions)
			require.Error(t, err)
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, entities.ErrInvalidFilter))
			assert.True(t, errors.Is(err, entities.ErrInvalidArgument))
		})
	}
}
