package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"contract-backend/models"
	"contract-backend/textutil"
)

// parsedAnalysis is the validated payload of an analysis response
type parsedAnalysis struct {
	RedFlags        []models.RedFlag
	StandardClauses []models.StandardClause
	Resume          string
}

// rawAnalysis mirrors the JSON the model is asked to produce. Severity and
// category stay strings here so that validation can name the bad value.
// Pointers tell a missing or null key apart from an empty one.
type rawAnalysis struct {
	RedFlags        *[]rawRedFlag            `json:"redFlags"`
	StandardClauses *[]models.StandardClause `json:"standardClauses"`
	Resume          *string                  `json:"resume"`
}

type rawRedFlag struct {
	Type        string `json:"type"`
	Title       string `json:"titre"`
	Description string `json:"description"`
	Citation    string `json:"citation"`
	Severity    string `json:"gravite"`
	Article     string `json:"article"`
}

// parseAnalysis decodes a model response. Markdown fences are stripped first;
// if that still isn't JSON, the first balanced object in the text is tried.
func parseAnalysis(content string) (*parsedAnalysis, error) {
	raw, err := decodeAnalysisObject(stripCodeFences(content))
	if err != nil {
		block, ok := extractJSONObject(content)
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if raw, err = decodeAnalysisObject(block); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return validateAnalysis(raw)
}

func decodeAnalysisObject(s string) (rawAnalysis, error) {
	var raw rawAnalysis
	if !strings.HasPrefix(s, "{") {
		return raw, errors.New("response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return raw, err
	}
	switch {
	case raw.RedFlags == nil:
		return raw, errors.New(`"redFlags" must be an array`)
	case raw.StandardClauses == nil:
		return raw, errors.New(`"standardClauses" must be an array`)
	case raw.Resume == nil:
		return raw, errors.New(`"resume" must be a string`)
	}
	return raw, nil
}

func validateAnalysis(raw rawAnalysis) (*parsedAnalysis, error) {
	out := &parsedAnalysis{
		RedFlags:        make([]models.RedFlag, 0, len(*raw.RedFlags)),
		StandardClauses: make([]models.StandardClause, 0, len(*raw.StandardClauses)),
		Resume:          strings.TrimSpace(*raw.Resume),
	}

	for i, f := range *raw.RedFlags {
		severity, err := models.ParseSeverity(f.Severity)
		if err != nil {
			return nil, fmt.Errorf("%w: red flag %d: %v", ErrMalformedResponse, i, err)
		}
		category, err := models.ParseCategory(f.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: red flag %d: %v", ErrMalformedResponse, i, err)
		}
		title := strings.TrimSpace(f.Title)
		if title == "" {
			title = string(category)
		}
		out.RedFlags = append(out.RedFlags, models.RedFlag{
			Type:        string(category),
			Title:       title,
			Description: strings.TrimSpace(f.Description),
			Citation:    strings.TrimSpace(f.Citation),
			Severity:    severity,
			Article:     strings.TrimSpace(f.Article),
		})
	}

	for _, c := range *raw.StandardClauses {
		if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.Description) == "" {
			continue
		}
		out.StandardClauses = append(out.StandardClauses, c)
	}

	if out.Resume == "" {
		out.Resume = DefaultResume
	}
	return out, nil
}

// stripCodeFences removes a surrounding ```json or ``` fence
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSONObject returns the first balanced {...} block of s. Braces inside
// JSON strings are ignored.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// unverifiedCitations returns the indexes of flags whose citation does not
// appear in the contract text, ignoring case, accents, spacing and quotes.
func unverifiedCitations(contractText string, flags []models.RedFlag) []int {
	haystack := textutil.Normalize(contractText)
	var missing []int
	for i, f := range flags {
		needle := textutil.Normalize(trimQuote(f.Citation))
		if needle == "" {
			continue
		}
		if !strings.Contains(haystack, needle) {
			missing = append(missing, i)
		}
	}
	return missing
}

// trimQuote drops surrounding quotes and ellipses the model adds to excerpts
func trimQuote(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.Trim(s, "\"'«»“”"))
		trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "..."), "...")
		trimmed = strings.TrimSuffix(strings.TrimPrefix(trimmed, "…"), "…")
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}
