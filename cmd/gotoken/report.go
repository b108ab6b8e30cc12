package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the security posture of the configured key and validity window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			r := svc.SecurityReport()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "algorithm:        %s\n", r.SigningAlgorithm)
			if r.Symmetric {
				fmt.Fprintf(out, "key bytes:        %d (minimum %d)\n", r.KeyBytes, r.MinKeyBytes)
			}
			fmt.Fprintf(out, "validity:         %s\n", r.ValidityDuration)
			fmt.Fprintf(out, "reserved claims:  %s\n", r.ReservedClaims)
			for _, w := range r.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			return nil
		},
	}
}
