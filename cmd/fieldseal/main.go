// Command fieldseal is the operator CLI for the encrypted document store:
// snapshot backups, restores, secret rotation, and envelope verification.
//
// Configuration comes from the environment (see the config package); the
// operator secret is always FIELDSEAL_SECRET.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fieldseal/fieldseal/config"
	"github.com/fieldseal/fieldseal/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return app.New(cfg, log), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fieldseal",
		Short:        "Encrypted document store operations",
		SilenceUsage: true,
	}
	root.AddCommand(
		newBackupCmd(),
		newRestoreCmd(),
		newListCmd(),
		newRotateCmd(),
		newVerifyCmd(),
	)
	return root
}

func newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot every collection to the backup target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			name, err := a.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(name)
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Replace the dataset with a snapshot's contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			return a.Restore(cmd.Context(), args[0])
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots on the backup target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			names, err := a.ListBackups(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func newRotateCmd() *cobra.Command {
	var secretEnv string

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Re-encrypt every record under a new operator secret",
		Long: "Re-encrypts every sensitive field and recomputes the blind indexes " +
			"under a new secret. The new secret is read from the environment " +
			"variable named by --new-secret-env, or prompted for interactively. " +
			"Restart the service with the new secret afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			newSecret, err := readNewSecret(secretEnv)
			if err != nil {
				return err
			}

			count, err := a.Rotate(cmd.Context(), newSecret)
			if err != nil {
				return err
			}
			fmt.Printf("rotated %d records\n", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&secretEnv, "new-secret-env", "",
		"environment variable holding the new secret (prompts when unset)")
	return cmd
}

func readNewSecret(envName string) (string, error) {
	if envName != "" {
		secret := os.Getenv(envName)
		if secret == "" {
			return "", fmt.Errorf("environment variable %s is empty", envName)
		}
		return secret, nil
	}

	fmt.Fprint(os.Stderr, "New secret: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading secret: %w", err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("secret must not be empty")
	}
	return string(secret), nil
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that every stored envelope opens under the current secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			checked, failed, err := a.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("checked %d envelopes, %d failed\n", checked, failed)
			if failed > 0 {
				return fmt.Errorf("%d envelopes failed verification", failed)
			}
			return nil
		},
	}
}
