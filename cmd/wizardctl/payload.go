package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"loan-wizard/internal/common/validation"
	"loan-wizard/internal/wizard"
)

func newPayloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payload DRAFT",
		Short: "Print the backend request a draft would submit",
		Long: `Assemble the nested loan request from the draft form and print it as JSON.
The request is then checked against the payload schema; schema problems
go to stderr and make the command fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDraft(args[0])
			if err != nil {
				return err
			}

			req := wizard.BuildRequest(d.form)
			out, err := json.MarshalIndent(req, "", "  ")
			if err != nil {
				return fmt.Errorf("encode payload: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			result, err := validation.ValidateLoanRequest(req)
			if err != nil {
				return err
			}
			if !result.Valid {
				for _, msg := range result.GetErrorMessages() {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return fmt.Errorf("payload failed schema validation with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}
