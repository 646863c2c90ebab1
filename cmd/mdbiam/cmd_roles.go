package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRolesCmd creates the roles subcommand.
func newRolesCmd() *cobra.Command {
	var expand bool
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "List the subject's roles on the admin database",
		Long: `Resolve the subject identity and list the role names granted on the
admin database, optionally expanded into the atomic actions each grants.

Unlike verify, this command surfaces failures: an unreachable cluster or an
unresolvable identity is an error, not an empty result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _, err := newVerifier()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
			ctx := context.Background()
			defer v.Close(ctx)

			subject, err := v.ResolveUsername(ctx, flagUsername)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error resolving identity: %v\n", err)
				os.Exit(exitError)
			}
			roles, err := v.ListRoles(ctx, subject)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error listing roles: %v\n", err)
				os.Exit(exitError)
			}

			if jsonOutput {
				out := struct {
					Subject string              `json:"subject"`
					Roles   []string            `json:"roles"`
					Actions map[string][]string `json:"actions,omitempty"`
				}{Subject: subject, Roles: roles}
				if expand {
					out.Actions = make(map[string][]string, len(roles))
					for _, role := range roles {
						out.Actions[role] = v.ExpandRole(ctx, role).Sorted()
					}
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
					os.Exit(exitError)
				}
				return nil
			}

			fmt.Printf("subject: %s\n", subject)
			fmt.Printf("roles (%d):\n", len(roles))
			for _, role := range roles {
				fmt.Printf("  %s\n", role)
				if expand {
					for _, action := range v.ExpandRole(ctx, role).Sorted() {
						fmt.Printf("    %s\n", action)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "expand each role into its atomic actions")
	return cmd
}
