package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/APISource-Intelligence/pkg/errors"
	"github.com/turtacn/APISource-Intelligence/internal/domain/sourcing"
)

func testBuyerPolicy(minConfidence int) Policy {
	return Policy{
		RequiredColumns:     []string{"company", "form", "confidence", "url"},
		MinConfidence:       minConfidence,
		RequireAPIMentionIn: []string{"product_name", "form", "strength", "verification_source"},
		RequireURL:          true,
	}
}

func validRow() map[string]string {
	return map[string]string{
		"company":             "MedCo Pharma",
		"form":                "aspirin tablet 100mg",
		"strength":            "100mg",
		"confidence":          "95%",
		"url":                 "https://medco.example.com/products",
		"verification_source": "company product catalog",
		"additional_info":     "finished dosage manufacturer",
	}
}

func TestValidateAcceptsGoodRow(t *testing.T) {
	accepted, counters, err := Validate(
		[]map[string]string{validRow()}, "aspirin", testBuyerPolicy(90), nil, nil)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, 0, counters.Total())
}

func TestValidateEmptyPolicyErrors(t *testing.T) {
	_, _, err := Validate(nil, "aspirin", Policy{}, nil, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidationPolicy))
}

func TestValidateMissingRequiredColumn(t *testing.T) {
	row := validRow()
	delete(row, "form")
	accepted, counters, err := Validate(
		[]map[string]string{row}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Equal(t, 1, counters.MissingRequired)
}

func TestValidateConfidenceBoundary(t *testing.T) {
	low := validRow()
	low["confidence"] = "45%"
	boundary := validRow()
	boundary["confidence"] = "50"
	boundary["company"] = "Boundary Pharma"

	accepted, counters, err := Validate(
		[]map[string]string{low, boundary}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	require.Len(t, accepted, 1, "50 at min 50 is inclusive; 45% is rejected")
	assert.Equal(t, "Boundary Pharma", accepted[0]["company"])
	assert.Equal(t, 1, counters.LowConfidence)
}

func TestValidateNonNumericConfidenceRejected(t *testing.T) {
	row := validRow()
	row["confidence"] = "very high"
	accepted, counters, err := Validate(
		[]map[string]string{row}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Equal(t, 1, counters.LowConfidence)
}

func TestValidateExclusionKeywords(t *testing.T) {
	apiOnly := validRow()
	apiOnly["additional_info"] = "Leading bulk drug supplier in Gujarat"

	middleman := validRow()
	middleman["company"] = "Global Trading Co"

	accepted, counters, err := Validate(
		[]map[string]string{apiOnly, middleman}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Equal(t, 2, counters.ExcludedKeyword)
}

func TestValidateRequiresAPIMention(t *testing.T) {
	row := validRow()
	row["form"] = "tablet 100mg"
	row["strength"] = "100mg"
	row["verification_source"] = "company catalog"
	accepted, counters, err := Validate(
		[]map[string]string{row}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Equal(t, 1, counters.NoAPIMention)
}

func TestValidateURLScheme(t *testing.T) {
	row := validRow()
	row["url"] = "www.medco.example.com"
	accepted, counters, err := Validate(
		[]map[string]string{row}, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, accepted)
	assert.Equal(t, 1, counters.BadURL)
}

func TestValidateDeduplicatesAgainstSkipSet(t *testing.T) {
	key := func(row map[string]string) string { return row["company"] }
	skip := sourcing.NewSkipSet("medco pharma")

	fresh := validRow()
	fresh["company"] = "NewCo Pharma"

	accepted, counters, err := Validate(
		[]map[string]string{validRow(), fresh, fresh}, "aspirin", testBuyerPolicy(50), skip, key)
	require.NoError(t, err)
	require.Len(t, accepted, 1, "known row and in-batch duplicate both dropped")
	assert.Equal(t, "NewCo Pharma", accepted[0]["company"])
	assert.Equal(t, 2, counters.Duplicate)
}

func TestValidatePreservesOrder(t *testing.T) {
	var rows []map[string]string
	names := []string{"Alpha Pharma", "Beta Pharma", "Gamma Pharma"}
	for _, n := range names {
		r := validRow()
		r["company"] = n
		rows = append(rows, r)
	}
	accepted, _, err := Validate(rows, "aspirin", testBuyerPolicy(50), nil, nil)
	require.NoError(t, err)
	require.Len(t, accepted, 3)
	for i, n := range names {
		assert.Equal(t, n, accepted[i]["company"])
	}
}
