package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"

	"beacon-dashboard/internal/secrets"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the Monday.com API token in the OS keyring",
	}
	cmd.AddCommand(newTokenSetCmd(), newTokenDeleteCmd(), newTokenStatusCmd())
	return cmd
}

func newTokenSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set [token]",
		Short:   "Store the API token (reads stdin when no argument is given)",
		Example: "  echo $TOKEN | beacon token set",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			tok := ""
			if len(args) == 1 {
				tok = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				tok = line
			}
			account := secrets.MondayKeyringAccount(cfg.Monday.BoardID)
			if err := secrets.SetMondayToken(account, strings.TrimSpace(tok)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored token for %s\n", account)
			return nil
		},
	}
}

func newTokenDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			account := secrets.MondayKeyringAccount(cfg.Monday.BoardID)
			if err := secrets.DeleteMondayToken(account); err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted token for %s\n", account)
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API token would be read from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case strings.TrimSpace(os.Getenv(secrets.TokenEnv)) != "":
				fmt.Fprintf(out, "token source: env %s\n", secrets.TokenEnv)
			case keyringHasToken(secrets.MondayKeyringAccount(cfg.Monday.BoardID)):
				fmt.Fprintln(out, "token source: keyring")
			case cfg.Monday.APIToken != "":
				fmt.Fprintln(out, "token source: config monday.api_token")
			default:
				fmt.Fprintln(out, "token source: none (gateway will answer 500)")
			}
			return nil
		},
	}
}

func keyringHasToken(account string) bool {
	tok, err := secrets.GetMondayToken(account)
	return err == nil && tok != ""
}
