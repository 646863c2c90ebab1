package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	iam "github.com/mongodb-industry-solutions/mdb-iam-util-go"
)

// Exit codes
const (
	exitSatisfied = 0
	exitMissing   = 1
	exitError     = 2
)

// newVerifyCmd creates the verify subcommand.
func newVerifyCmd() *cobra.Command {
	var (
		required []string
		roles    []string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Diff effective permissions against a required list",
		Long: `Expand the subject's roles (or the roles given with --roles) into the
effective permission set and diff it against the required actions.

Exit status is 0 when every required action is granted, 1 when any is
missing, 2 on configuration errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(required) == 0 {
				fmt.Fprintln(os.Stderr, "Error: no required actions; pass --require at least once")
				os.Exit(exitError)
			}
			v, cfg, err := newVerifier()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(exitError)
			}
			ctx := context.Background()
			defer v.Close(ctx)

			result := v.VerifyPermissions(ctx, required, roles...)
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(reportFromDiff(cfg, result)); err != nil {
					fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
					os.Exit(exitError)
				}
			} else {
				printHumanDiff(result)
			}

			if !result.Satisfied() {
				os.Exit(exitMissing)
			}
			os.Exit(exitSatisfied)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&required, "require", nil, "required action name (repeatable)")
	cmd.Flags().StringSliceVar(&roles, "roles", nil, "audit these roles instead of the subject's grants")
	return cmd
}

// report is the JSON output shape of verify.
type report struct {
	URI     string   `json:"uri"`
	Subject string   `json:"subject,omitempty"`
	Extra   []string `json:"extra"`
	Missing []string `json:"missing"`
	Present []string `json:"present"`
}

func reportFromDiff(cfg config, d iam.DiffResult) report {
	return report{
		URI:     cfg.URI,
		Subject: cfg.Username,
		Extra:   d.Extra.Sorted(),
		Missing: d.Missing.Sorted(),
		Present: d.Present.Sorted(),
	}
}

// printHumanDiff prints the partitions in human-readable form.
func printHumanDiff(d iam.DiffResult) {
	status := "OK"
	if !d.Satisfied() {
		status = "MISSING PERMISSIONS"
	}
	fmt.Printf("audit result: %s\n", status)
	printSection("present", d.Present)
	printSection("missing", d.Missing)
	printSection("extra", d.Extra)
}

func printSection(name string, set iam.PermissionSet) {
	fmt.Printf("\n%s (%d):\n", name, len(set))
	for _, action := range set.Sorted() {
		fmt.Printf("  %s\n", action)
	}
}
