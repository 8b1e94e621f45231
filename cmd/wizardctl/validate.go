package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"loan-wizard/internal/wizard"
)

func newValidateCmd() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:   "validate [--step N] DRAFT",
		Short: "Print the validation errors of a draft",
		Long: `Print the errors blocking each wizard step. With --step only that step is
checked; step 6 is the review gate, which also requires every mandatory
document for the chosen occupation and loan type.

Exits non-zero when any error is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDraft(args[0])
			if err != nil {
				return err
			}

			steps := []wizard.Step{
				wizard.StepPersonal, wizard.StepEmployment, wizard.StepLoan,
				wizard.StepExistingLoan, wizard.StepReferences,
			}
			if cmd.Flags().Changed("step") {
				s := wizard.Step(step)
				if !s.Valid() {
					return fmt.Errorf("step must be between %d and %d", wizard.FirstStep, wizard.LastStep)
				}
				steps = []wizard.Step{s}
			}

			total := 0
			for _, s := range steps {
				errs := wizard.Validate(s, d.form, d.attached, d.existing)
				total += len(errs)
				printStepErrors(cmd.OutOrStdout(), s, errs)
			}
			if total > 0 {
				return fmt.Errorf("draft has %d validation error(s)", total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 0, "check only this step (1-6)")
	return cmd
}

func printStepErrors(w io.Writer, s wizard.Step, errs wizard.Errors) {
	if errs.Empty() {
		fmt.Fprintf(w, "Step %d %s: ok\n", s, s)
		return
	}
	fmt.Fprintf(w, "Step %d %s:\n", s, s)
	for _, k := range errs.Keys() {
		fmt.Fprintf(w, "  %s: %s\n", k, errs[k])
	}
}
