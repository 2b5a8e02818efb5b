package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"contract-backend/textutil"
)

// Contract types, most specific match first
const (
	ContractTypeLease       = "Bail"
	ContractTypePermanent   = "CDI"
	ContractTypeFixedTerm   = "CDD"
	ContractTypeFreelance   = "Freelance"
	ContractTypeNDA         = "NDA"
	ContractTypeSale        = "Vente"
	ContractTypePartnership = "Associés"
	ContractTypeGeneric     = "Contrat"
)

// contractTypeRules is checked in order; keywords are accent-folded
var contractTypeRules = []struct {
	contractType string
	nameKeywords []string
	textKeywords []string
}{
	{ContractTypeLease, []string{"bail"}, []string{"bail", "loyer", "locataire"}},
	{ContractTypePermanent, []string{"cdi"}, []string{"contrat de travail", "salarie"}},
	{ContractTypeFixedTerm, []string{"cdd"}, []string{"contrat a duree determinee"}},
	{ContractTypeFreelance, []string{"freelance"}, []string{"prestation", "freelance", "independant"}},
	{ContractTypeNDA, []string{"nda"}, []string{"confidentialite", "non-divulgation"}},
	{ContractTypeSale, nil, []string{"cgv", "conditions generales de vente", "achat"}},
	{ContractTypePartnership, nil, []string{"associe", "pacte d'actionnaires"}},
}

// DetectContractType guesses the contract family from its text and file name
func DetectContractType(text, fileName string) string {
	folded := textutil.Fold(text)
	name := textutil.Fold(fileName)
	for _, rule := range contractTypeRules {
		if textutil.ContainsAny(name, rule.nameKeywords...) || textutil.ContainsAny(folded, rule.textKeywords...) {
			return rule.contractType
		}
	}
	return ContractTypeGeneric
}

var frenchMonths = [...]string{"janv.", "févr.", "mars", "avr.", "mai", "juin", "juil.", "août", "sept.", "oct.", "nov.", "déc."}

// ExtractContractName turns an uploaded file name into a display name.
// Short or generic names are replaced by "<type> - <day> <month>".
func ExtractContractName(fileName, contractType string, now time.Time) string {
	base := filepath.Base(fileName)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".pdf", ".txt", ".md":
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		words[i] = titleWord(w)
	}
	name := strings.Join(words, " ")

	if len([]rune(name)) < 5 || strings.EqualFold(name, "contrat") || strings.EqualFold(name, "document") {
		if contractType == "" {
			contractType = ContractTypeGeneric
		}
		return fmt.Sprintf("%s - %d %s", contractType, now.Day(), frenchMonths[now.Month()-1])
	}
	return name
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
