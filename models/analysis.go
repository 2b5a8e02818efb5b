package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"contract-backend/textutil"
)

var (
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrUnknownCategory = errors.New("unknown clause category")
)

// Severity is the ordinal risk level of a red flag. Values are the French
// labels already present in persisted analyses.
type Severity string

const (
	SeverityLow      Severity = "faible"
	SeverityModerate Severity = "modérée"
	SeverityHigh     Severity = "élevée"
)

// ParseSeverity accepts the canonical labels with or without accents, in any
// case, plus their English equivalents.
func ParseSeverity(s string) (Severity, error) {
	switch textutil.Fold(strings.TrimSpace(s)) {
	case "faible", "low":
		return SeverityLow, nil
	case "moderee", "modere", "moderate", "medium":
		return SeverityModerate, nil
	case "elevee", "eleve", "high":
		return SeverityHigh, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, s)
}

// Valid reports whether s is one of the three canonical severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityModerate, SeverityHigh:
		return true
	}
	return false
}

// Rank orders severities: low < moderate < high. Invalid severities rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityModerate:
		return 2
	case SeverityHigh:
		return 3
	}
	return 0
}

// UnmarshalJSON rejects anything that is not a recognisable severity.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSeverity, string(data))
	}
	parsed, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Category is one of the seven clause-risk categories. The value is the
// label emitted in the "type" field.
type Category string

const (
	CategoryNonCompete            Category = "Clause de non-concurrence abusive"
	CategoryPaymentTerms          Category = "Délais de paiement anormaux"
	CategoryIntellectualProperty  Category = "Propriété intellectuelle déséquilibrée"
	CategoryUnilateralTermination Category = "Clause résolutoire unilatérale"
	CategoryPenalties             Category = "Pénalités disproportionnées"
	CategoryExclusivity           Category = "Exclusivité sans contrepartie"
	CategoryArbitration           Category = "Clause compromissoire douteuse"
)

// Categories lists the closed set in the order used by the analysis prompt.
var Categories = []Category{
	CategoryNonCompete,
	CategoryPaymentTerms,
	CategoryIntellectualProperty,
	CategoryUnilateralTermination,
	CategoryPenalties,
	CategoryExclusivity,
	CategoryArbitration,
}

// categoryKeywords is checked in order; the first match wins. Penalties come
// before payment terms so "pénalités de retard de paiement" is a penalty.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryNonCompete, []string{"concurren", "non-compete", "non_compete", "noncompete"}},
	{CategoryIntellectualProperty, []string{"propriete intellectuelle", "propriete_intellectuelle", "intellectual property", "intellectual_property", "cession de droits", "droits d'auteur"}},
	{CategoryExclusivity, []string{"exclusivit", "exclusivity"}},
	{CategoryArbitration, []string{"compromissoire", "arbitrag", "arbitration"}},
	{CategoryPenalties, []string{"penalit", "penalty", "penalties", "clause penale"}},
	{CategoryUnilateralTermination, []string{"resolutoire", "resiliation", "rupture", "termination"}},
	{CategoryPaymentTerms, []string{"paiement", "payment"}},
}

// ParseCategory maps a free-form category name to its canonical category.
func ParseCategory(s string) (Category, error) {
	folded := textutil.Normalize(s)
	if folded == "" {
		return "", fmt.Errorf("%w: empty", ErrUnknownCategory)
	}
	for _, ck := range categoryKeywords {
		if textutil.ContainsAny(folded, ck.keywords...) {
			return ck.category, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// RedFlag is one detected problematic clause.
type RedFlag struct {
	Type        string   `json:"type"`
	Title       string   `json:"titre"`
	Description string   `json:"description"`
	Citation    string   `json:"citation"`
	Severity    Severity `json:"gravite"`
	Article     string   `json:"article,omitempty"`
}

// StandardClause is a conforming clause reported for completeness.
type StandardClause struct {
	Title       string `json:"titre"`
	Description string `json:"description"`
}

// Verdict is the recommendation derived from a risk score.
type Verdict string

const (
	VerdictSign      Verdict = "SIGNER"
	VerdictNegotiate Verdict = "NÉGOCIER"
	VerdictRefuse    Verdict = "REFUSER"
)

// AnalysisResult is the output of one analysis pass. A failed pass only
// carries Error.
type AnalysisResult struct {
	Success         bool
	RiskScore       int
	RedFlags        []RedFlag
	StandardClauses []StandardClause
	Summary         string
	Error           string
}

type analysisResultJSON struct {
	Success         bool             `json:"success"`
	RiskScore       *int             `json:"riskScore,omitempty"`
	RedFlags        []RedFlag        `json:"redFlags,omitempty"`
	StandardClauses []StandardClause `json:"standardClauses,omitempty"`
	Resume          *string          `json:"resume,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// FailedResult builds the result returned for any expected failure.
func FailedResult(message string) *AnalysisResult {
	return &AnalysisResult{Success: false, Error: message}
}

// MarshalJSON emits the analyze response shape: every field on success,
// only success and error on failure.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(analysisResultJSON{Success: false, Error: r.Error})
	}
	redFlags := r.RedFlags
	if redFlags == nil {
		redFlags = []RedFlag{}
	}
	clauses := r.StandardClauses
	if clauses == nil {
		clauses = []StandardClause{}
	}
	return json.Marshal(struct {
		Success         bool             `json:"success"`
		RiskScore       int              `json:"riskScore"`
		RedFlags        []RedFlag        `json:"redFlags"`
		StandardClauses []StandardClause `json:"standardClauses"`
		Resume          string           `json:"resume"`
	}{true, r.RiskScore, redFlags, clauses, r.Summary})
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw analysisResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = AnalysisResult{
		Success:         raw.Success,
		RedFlags:        raw.RedFlags,
		StandardClauses: raw.StandardClauses,
		Error:           raw.Error,
	}
	if raw.RiskScore != nil {
		r.RiskScore = *raw.RiskScore
	}
	if raw.Resume != nil {
		r.Summary = *raw.Resume
	}
	return nil
}
