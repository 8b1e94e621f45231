package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"loan-wizard/internal/wizard"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List document slots, their backend types and when they are required",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printSlots(cmd.OutOrStdout())
		},
	}
}

func printSlots(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tLABEL\tDOCUMENT TYPE\tSTEP\tREQUIRED")
	for _, spec := range wizard.SlotTable {
		step, when := requirementFor(spec.Slot)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", spec.Slot, spec.Label, spec.DocumentType, step, when)
	}
	return tw.Flush()
}

// requirementFor describes the rule row naming slot, if any.
func requirementFor(slot wizard.Slot) (string, string) {
	for _, r := range wizard.Requirements {
		for _, s := range r.Slots {
			if s != slot {
				continue
			}
			step := fmt.Sprintf("%d", r.Step)
			if r.Field == "" {
				return step, "always"
			}
			return step, fmt.Sprintf("%s = %s", r.Field, r.Value)
		}
	}
	return "-", "never"
}
