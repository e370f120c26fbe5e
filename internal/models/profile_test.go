package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkinType(t *testing.T) {
	tests := []struct {
		in      string
		want    SkinType
		wantErr bool
	}{
		{"oily", SkinTypeOily, false},
		{"  DRY ", SkinTypeDry, false},
		{"Combination", SkinTypeCombination, false},
		{"Sensitive", SkinTypeSensitive, false},
		{"normal", SkinTypeNormal, false},
		{"scaly", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSkinType(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownSkinType)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkinTypeTitle(t *testing.T) {
	assert.Equal(t, "Oily", SkinTypeOily.Title())
	assert.Equal(t, "Combination", SkinTypeCombination.Title())
	assert.Equal(t, "Very Oily", SkinType("very oily").Title())
	assert.Empty(t, SkinType("").Title())
}

func TestConcernListUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ConcernList
	}{
		{"array", `{"concerns":["acne","Dryness"]}`, ConcernList{"acne", "Dryness"}},
		{"comma string", `{"concerns":"acne, aging"}`, ConcernList{"acne", " aging"}},
		{"empty string", `{"concerns":""}`, nil},
		{"null", `{"concerns":null}`, nil},
		{"absent", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d IntakeData
			require.NoError(t, json.Unmarshal([]byte(tt.body), &d))
			assert.Equal(t, tt.want, d.Concerns)
		})
	}

	var d IntakeData
	assert.Error(t, json.Unmarshal([]byte(`{"concerns":42}`), &d))
}

func TestIntakeDataProfile(t *testing.T) {
	t.Run("nil intake yields nil profile", func(t *testing.T) {
		var d *IntakeData
		assert.Nil(t, d.Profile())
	})

	t.Run("normalizes fields", func(t *testing.T) {
		d := &IntakeData{
			SkinType:  " Oily ",
			Sensitive: "YES",
			Concerns:  ConcernList{"Acne", " aging", "acne", ""},
		}

		p := d.Profile()
		require.NotNil(t, p)
		assert.Equal(t, SkinTypeOily, p.SkinType)
		assert.Equal(t, SensitivityYes, p.Sensitive)
		assert.Equal(t, []Concern{ConcernAcne, ConcernAging}, p.Concerns)
		assert.True(t, p.HasSkinType())
		assert.True(t, p.IsSensitive())
		assert.Equal(t, []string{"acne", "aging"}, ConcernStrings(p.Concerns))
	})

	t.Run("unknown sensitivity stays unknown", func(t *testing.T) {
		p := (&IntakeData{Sensitive: "maybe"}).Profile()
		assert.Equal(t, SensitivityUnknown, p.Sensitive)
		assert.False(t, p.HasSkinType())
		assert.False(t, p.IsSensitive())
	})
}
