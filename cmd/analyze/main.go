// Command analyze runs one contract analysis from the command line and
// prints the JSON response the API would return.
//
//	analyze contrat.txt
//	analyze -action ask -question "Quelle est la durée du préavis ?" contrat.txt
//	cat contrat.txt | analyze -action negotiate
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"contract-backend/config"
	"contract-backend/llm"
	"contract-backend/logger"
	"contract-backend/scoring"
	"contract-backend/service"

	"github.com/sirupsen/logrus"
)

func main() {
	action := flag.String("action", "analyze", "analyze, ask, negotiate or legal")
	question := flag.String("question", "", "question for -action ask")
	flag.Parse()

	// Logs go to stderr so stdout stays valid JSON
	logger.Log.SetOutput(os.Stderr)
	log := logger.Log

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	text, err := readContract(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read contract: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	generator, closeGenerator, err := llm.New(ctx, llm.Settings{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize generator: %v", err)
	}

	svc := service.NewAnalysisService(
		service.WithGenerator(generator),
		service.WithCitationCheck(cfg.Analysis.VerifyCitations),
	)

	code := run(ctx, svc, *action, *question, text, os.Stdout)
	if err := closeGenerator(); err != nil {
		log.WithError(err).Warn("Failed to close generator")
	}
	stop()
	os.Exit(code)
}

func run(ctx context.Context, svc *service.AnalysisService, action, question, text string, out io.Writer) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	switch action {
	case "analyze":
		result, err := svc.AnalyzeContract(ctx, text)
		if errors.Is(err, service.ErrEmptyInput) {
			logger.Log.Error(service.MsgEmptyInput)
			return 2
		}
		if err != nil {
			logger.Log.WithError(err).Error("Analysis aborted")
			return 1
		}
		if err := enc.Encode(result); err != nil {
			logger.Log.WithError(err).Error("Failed to write result")
			return 1
		}
		if !result.Success {
			return 1
		}
		if verdict, err := scoring.Classify(result.RiskScore); err == nil {
			logger.Log.WithFields(logrus.Fields{"risk_score": result.RiskScore, "verdict": verdict}).Info("Verdict")
		}
		return 0
	case "ask":
		if question == "" {
			logger.Log.Error("-question is required with -action ask")
			return 2
		}
		return encode(enc, map[string]string{"answer": svc.AskQuestion(ctx, question, text)})
	case "negotiate":
		return encode(enc, map[string]string{"advice": svc.Negotiate(ctx, text, nil)})
	case "legal":
		return encode(enc, map[string]string{"expertise": svc.LegalExpertise(ctx, text, nil)})
	default:
		logger.Log.Errorf("Unknown action %q", action)
		return 2
	}
}

func encode(enc *json.Encoder, v any) int {
	if err := enc.Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to write result")
		return 1
	}
	return 0
}

// readContract reads path, or stdin when path is empty or "-"
func readContract(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
