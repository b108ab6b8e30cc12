package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	goToken "github.com/MrEthical07/goToken"
	"github.com/spf13/cobra"
)

func newIssueCmd(a *app) *cobra.Command {
	var (
		claimsJSON string
		pairs      []string
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign claims into a new token",
		Long: `Sign claims into a new token and print it.

Claims come from --claims (a JSON object) and any number of --claim key=value
pairs, which are added as strings and override keys from --claims.`,
		Example: `  gotoken issue --secret s3cr3t --claim sub=alice --claim role=admin
  gotoken issue --claims '{"sub":"alice","scopes":["read"]}' --ttl 1h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			claims, err := parseClaims(claimsJSON, pairs)
			if err != nil {
				return err
			}
			svc, err := a.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			token, err := svc.Issue(claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&claimsJSON, "claims", "", "claims as a JSON object")
	cmd.Flags().StringArrayVar(&pairs, "claim", nil, "claim as key=value (repeatable)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Verify a token and print its claims as JSON",
		Long:  "Verify a token and print its claims as JSON. Exits with status 1 when the token is invalid or expired.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			claims, err := svc.Verify(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(claims)
		},
	}
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh TOKEN",
		Short: "Re-issue a valid token with a fresh validity window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			token, err := svc.Refresh(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func parseClaims(raw string, pairs []string) (goToken.Claims, error) {
	claims := goToken.Claims{}
	if strings.TrimSpace(raw) != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&claims); err != nil {
			return nil, fmt.Errorf("--claims must be a JSON object: %w", err)
		}
		if dec.More() {
			return nil, errors.New("--claims must hold a single JSON object")
		}
	}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("--claim %q must be key=value", p)
		}
		claims[k] = v
	}
	return claims, nil
}
