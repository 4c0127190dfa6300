package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"onlyremote-engine/internal/secrets"
)

func secretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage source API keys in the OS keychain",
		Long: `API keys are looked up by their environment variable name (api_key_env
in config.yml). Keys stored here are used when the variable is not set.`,
	}

	var value string
	set := &cobra.Command{
		Use:   "set <ENV_NAME>",
		Short: "Store a key; reads stdin when --value is omitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := value
			if v == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret from stdin: %w", err)
				}
				v = strings.TrimSpace(line)
			}
			if v == "" {
				return errors.New("empty secret")
			}
			if err := secrets.Set(args[0], v); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return nil
		},
	}
	set.Flags().StringVar(&value, "value", "", "secret value (visible in shell history; prefer stdin)")

	del := &cobra.Command{
		Use:   "delete <ENV_NAME>",
		Short: "Remove a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := secrets.Delete(args[0])
			if errors.Is(err, secrets.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not stored\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(set, del)
	return cmd
}
