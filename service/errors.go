package service

import (
	"errors"
)

var (
	ErrEmptyInput        = errors.New("no contract text provided")
	ErrMalformedResponse = errors.New("generation backend returned an unreadable analysis")
	ErrAnalysisNotFound  = errors.New("analysis not found")
	ErrJobNotFound       = errors.New("analysis job not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFile   = errors.New("file content cannot be analyzed directly")
)

// User-facing messages, rendered as is by the UI
const (
	MsgEmptyInput        = "Aucun texte de contrat fourni"
	MsgMalformedResponse = "Erreur lors de l'analyse du contrat. Veuillez réessayer."
	MsgRateLimited       = "Trop de demandes en cours. Veuillez réessayer dans quelques instants."
	MsgPaymentRequired   = "Le service d'analyse n'est plus disponible : crédits épuisés. Contactez l'administrateur."
	MsgUpstream          = "Le service d'analyse est momentanément indisponible. Veuillez réessayer."
	MsgFallback          = "Désolé, une erreur s'est produite. Veuillez réessayer."
	DefaultResume        = "Analyse terminée."
)
