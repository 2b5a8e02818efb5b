package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"faible", SeverityLow},
		{"Faible", SeverityLow},
		{"low", SeverityLow},
		{"modérée", SeverityModerate},
		{"moderee", SeverityModerate},
		{"MODERATE", SeverityModerate},
		{"élevée", SeverityHigh},
		{" elevee ", SeverityHigh},
		{"high", SeverityHigh},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSeverity("critique")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
	_, err = ParseSeverity("")
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityModerate.Rank())
	assert.Less(t, SeverityModerate.Rank(), SeverityHigh.Rank())
	assert.Equal(t, 0, Severity("critique").Rank())
	assert.False(t, Severity("critique").Valid())
}

func TestRedFlagUnmarshalRejectsUnknownSeverity(t *testing.T) {
	var flag RedFlag
	err := json.Unmarshal([]byte(`{"type":"x","titre":"t","gravite":"urgent"}`), &flag)
	assert.ErrorIs(t, err, ErrInvalidSeverity)

	err = json.Unmarshal([]byte(`{"type":"x","titre":"t","gravite":3}`), &flag)
	assert.ErrorIs(t, err, ErrInvalidSeverity)
}

func TestRedFlagJSONFieldNames(t *testing.T) {
	flag := RedFlag{
		Type:        string(CategoryNonCompete),
		Title:       "Non-concurrence de 5 ans",
		Description: "Durée excessive.",
		Citation:    "Le salarié s'interdit...",
		Severity:    SeverityHigh,
	}
	data, err := json.Marshal(flag)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "élevée", raw["gravite"])
	assert.Equal(t, "Non-concurrence de 5 ans", raw["titre"])
	assert.NotContains(t, raw, "article")

	flag.Article = "Article 7"
	data, err = json.Marshal(flag)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"article":"Article 7"`)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Clause de non-concurrence abusive", CategoryNonCompete},
		{"non_compete", CategoryNonCompete},
		{"Délais de paiement anormaux", CategoryPaymentTerms},
		{"Propriété Intellectuelle déséquilibrée", CategoryIntellectualProperty},
		{"Clause résolutoire unilatérale", CategoryUnilateralTermination},
		{"Résiliation unilatérale", CategoryUnilateralTermination},
		{"Pénalités disproportionnées", CategoryPenalties},
		{"Pénalités de retard de paiement", CategoryPenalties},
		{"Exclusivité sans contrepartie", CategoryExclusivity},
		{"Clause compromissoire douteuse", CategoryArbitration},
		{"Arbitrage à l'étranger", CategoryArbitration},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseCategory("Clause de confidentialité")
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = ParseCategory("  ")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategoriesAreSelfParsing(t *testing.T) {
	require.Len(t, Categories, 7)
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestAnalysisResultMarshalSuccess(t *testing.T) {
	result := AnalysisResult{Success: true, RiskScore: 0, Summary: "RAS"}
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"riskScore":0,"redFlags":[],"standardClauses":[],"resume":"RAS"}`, string(data))
}

func TestAnalysisResultMarshalFailure(t *testing.T) {
	data, err := json.Marshal(FailedResult("boom"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"boom"}`, string(data))
}

func TestAnalysisResultUnmarshal(t *testing.T) {
	var result AnalysisResult
	err := json.Unmarshal([]byte(`{"success":true,"riskScore":63,"redFlags":[{"type":"t","titre":"a","description":"d","citation":"c","gravite":"élevée"}],"standardClauses":[{"titre":"Confidentialité","description":"ok"}],"resume":"Résumé"}`), &result)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 63, result.RiskScore)
	assert.Equal(t, "Résumé", result.Summary)
	require.Len(t, result.RedFlags, 1)
	assert.Equal(t, SeverityHigh, result.RedFlags[0].Severity)
	require.Len(t, result.StandardClauses, 1)
}

func TestJSONBScan(t *testing.T) {
	var flags RedFlags
	require.NoError(t, flags.Scan([]byte(`[{"type":"t","titre":"a","description":"d","citation":"c","gravite":"faible"}]`)))
	require.Len(t, flags, 1)

	var clauses StandardClauses
	require.NoError(t, clauses.Scan(`[{"titre":"a","description":"b"}]`))
	require.Len(t, clauses, 1)

	require.NoError(t, flags.Scan(nil))
	assert.NotNil(t, flags)
	assert.Empty(t, flags)

	value, err := RedFlags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)
}

func TestJobStepsProgress(t *testing.T) {
	steps := NewJobSteps()
	assert.Equal(t, 0, steps.Progress())
	steps[0].Status = JobStatusCompleted
	assert.Equal(t, 33, steps.Progress())
	steps[1].Status = JobStatusCompleted
	steps[2].Status = JobStatusCompleted
	assert.Equal(t, 100, steps.Progress())
	assert.Equal(t, 0, JobSteps{}.Progress())
}
