package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDetectContractType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		fileName string
		want     string
	}{
		{"lease from text", "Le locataire verse un loyer mensuel.", "doc.pdf", ContractTypeLease},
		{"lease from name", "", "Bail_Paris.pdf", ContractTypeLease},
		{"permanent", "Le SALARIÉ est engagé à temps plein.", "x.pdf", ContractTypePermanent},
		{"permanent from name", "", "cdi-dupont.pdf", ContractTypePermanent},
		{"fixed term", "Contrat à durée déterminée de six mois.", "x.pdf", ContractTypeFixedTerm},
		{"freelance", "Le consultant indépendant réalise la mission.", "x.pdf", ContractTypeFreelance},
		{"nda", "Obligation de confidentialité réciproque.", "x.pdf", ContractTypeNDA},
		{"sale", "Les conditions générales de vente s'appliquent.", "x.pdf", ContractTypeSale},
		{"partnership", "Pacte d'actionnaires entre les associés.", "x.pdf", ContractTypePartnership},
		{"generic", "Les parties conviennent de ce qui suit.", "x.pdf", ContractTypeGeneric},
		{"lease wins over employment", "Le salarié est locataire du logement.", "x.pdf", ContractTypeLease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectContractType(tt.text, tt.fileName))
		})
	}
}

func TestExtractContractName(t *testing.T) {
	now := time.Date(2026, time.February, 3, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		fileName string
		want     string
	}{
		{"contrat_de_travail-DUPONT.pdf", "Contrat De Travail Dupont"},
		{"bail appartement.PDF", "Bail Appartement"},
		{"élève_stage.txt", "Élève Stage"},
		{"nda.pdf", "CDI - 3 févr."},
		{"contrat.pdf", "CDI - 3 févr."},
		{"DOCUMENT.pdf", "CDI - 3 févr."},
		{"", "CDI - 3 févr."},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractContractName(tt.fileName, ContractTypePermanent, now))
		})
	}

	assert.Equal(t, "Contrat - 31 déc.", ExtractContractName("a.pdf", "", time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)))
}
