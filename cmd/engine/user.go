package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"onlyremote-engine/internal/store"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user profiles",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-tier <user-id> <free|pro>",
		Short: "Set a profile's subscription tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier := strings.ToLower(strings.TrimSpace(args[1]))
			if tier != store.TierFree && tier != store.TierPro {
				return fmt.Errorf("tier must be %s or %s, got %q", store.TierFree, store.TierPro, args[1])
			}
			db, err := store.OpenAndMigrate(cmd.Context(), filepath.Join(dataDir, "engine.db"))
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.SetTier(cmd.Context(), args[0], tier); err != nil {
				return err
			}
			p, err := db.GetProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: tier=%s premium=%t resume_scans=%d cover_letters=%d\n",
				p.ID, p.SubscriptionTier, p.IsPremium, p.ResumeScansCount, p.CoverLettersCount)
			return nil
		},
	})
	return cmd
}
