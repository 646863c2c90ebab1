// Command mdbiam audits MongoDB credentials against a required permission
// list. It connects with the configured authentication mechanism, resolves
// the subject's roles and prints the extra/missing/present partitions.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version info (set by ldflags)
var version = "dev"

// Global flags
var (
	flagURI       string
	flagMechanism string
	flagUsername  string
	debug         bool
	jsonOutput    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mdbiam",
		Short: "MongoDB role and permission audit utility",
		Long: `mdbiam verifies that a MongoDB credential is neither under- nor
over-privileged. It resolves the authenticated subject, aggregates the roles
granted on the admin database, expands them into atomic action names and
diffs the result against a required permission list.

Connection and credential settings may also be supplied via MDBIAM_*
environment variables (MDBIAM_URI, MDBIAM_MECHANISM, MDBIAM_USERNAME,
MDBIAM_PASSWORD, MDBIAM_CERTIFICATE_FILE, MDBIAM_ACCESS_TOKEN, ...); flags
take precedence.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVar(&flagURI, "uri", "", "MongoDB connection string")
	rootCmd.PersistentFlags().StringVar(&flagMechanism, "mechanism", "", "authentication mechanism (SCRAM-SHA-256, MONGODB-X509, MONGODB-AWS, PLAIN, MONGODB-OIDC)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "subject username override (skips identity resolution)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(
		newVerifyCmd(),
		newRolesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		// Error already printed by cobra
		os.Exit(1)
	}
}
