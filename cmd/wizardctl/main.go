package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wizardctl",
		Short: "Check loan application drafts offline",
		Long: `wizardctl runs the loan wizard rules against a draft file without a
server or backend.

A draft is YAML with three keys:

  form:       field name to value
  documents:  slot names that have a file attached
  existing:   slot name to stored documents, each {id, documentType}`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newValidateCmd())
	root.AddCommand(newPayloadCmd())
	root.AddCommand(newSlotsCmd())
	return root
}
