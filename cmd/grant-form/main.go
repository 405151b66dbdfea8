// cmd/grant-form/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"grant-portal/internal/common/config"
	"grant-portal/internal/common/logger"
	"grant-portal/internal/form/engine"
	"grant-portal/internal/form/persistence"
	"grant-portal/internal/form/prompt"
	"grant-portal/internal/form/steps"
	"grant-portal/internal/form/validators"
)

func main() {
	applicationID := flag.String("application", "", "resume the draft with this application id")
	flag.Parse()

	if err := run(*applicationID); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted. Your last saved draft is kept.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "grant-form: %v\n", err)
		os.Exit(1)
	}
}

func run(applicationID string) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	// stdout belongs to the prompts
	log := logger.NewStructuredWithOutput(cfg.Logging.Level, "console", "stderr")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	form := steps.Grant()
	adapter := persistence.NewAdapter(persistence.NewClient(cfg.Client), form, log)

	memo, err := validators.NewMemo(cfg.Form.EmailCacheSize, validators.ValidateEmail)
	if err != nil {
		return err
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithValidatorOptions(engine.WithEmailValidator(memo.Validate)),
	}
	if applicationID != "" {
		values, err := adapter.LoadApplication(ctx, applicationID)
		if err != nil {
			return fmt.Errorf("load application %s: %w", applicationID, err)
		}
		opts = append(opts, engine.WithInitialValues(values), engine.WithApplicationID(applicationID))
	}

	session := engine.NewSession(form, adapter, opts...)
	defer session.Close()

	runner := prompt.NewRunner(session, prompt.NewSurveyPrompter(), log, prompt.WithEmailCheck(memo.Validate))
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	switch {
	case result.Submitted:
		fmt.Printf("Submitted application %s\n", result.ApplicationID)
	case result.ApplicationID != "":
		fmt.Printf("Draft saved. Resume with: grant-form -application %s\n", result.ApplicationID)
	default:
		fmt.Println("Nothing was saved.")
	}
	return nil
}
