package validation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobeautician/advisor/internal/models"
)

func TestValidateStruct_IntakeSubmission(t *testing.T) {
	tests := []struct {
		name    string
		sub     models.IntakeSubmission
		wantErr string
	}{
		{"valid", models.IntakeSubmission{SkinType: "Combination", Sensitive: "no"}, ""},
		{"missing skin type", models.IntakeSubmission{Sensitive: "no"}, "skin_type is required"},
		{"unknown skin type", models.IntakeSubmission{SkinType: "scaly", Sensitive: "no"},
			"skin_type must be one of: oily, dry, normal, combination, sensitive"},
		{"bad sensitive", models.IntakeSubmission{SkinType: "oily", Sensitive: "Yes"}, "sensitive must be one of: yes no"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.sub)
			if tt.wantErr == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStruct_QuestionRules(t *testing.T) {
	assert.NoError(t, ValidateStruct(&models.AskRequest{Question: "ok"}))

	err := ValidateStruct(&models.AskRequest{Question: " \t "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question must not be blank")

	err = ValidateStruct(&models.AskRequest{Question: "a\x00b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question must not contain NULL bytes")
}

func TestGetValidationErrorDetails(t *testing.T) {
	err := ValidateStruct(&models.IntakeSubmission{})
	require.Error(t, err)

	details := GetValidationErrorDetails(err)
	require.Len(t, details, 2)
	assert.Equal(t, "IntakeSubmission.skin_type", details[0].Location)
	assert.Equal(t, "skin_type is required", details[0].Message)
}

func TestValidateAndDecodeQueryParams(t *testing.T) {
	var filters models.ListProductsFilters

	req := httptest.NewRequest(http.MethodGet, "/api/products?skin_type=Dry&skin_type=Oily&limit=3", http.NoBody)
	require.NoError(t, ValidateAndDecodeQueryParams(req, &filters))
	assert.Equal(t, []string{"Dry", "Oily"}, filters.SkinTypes)
	assert.Equal(t, 3, filters.Limit)

	req = httptest.NewRequest(http.MethodGet, "/api/ingredients?search=%00", http.NoBody)
	assert.Error(t, ValidateAndDecodeQueryParams(req, &models.ListIngredientsFilters{}))
}
