package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/db"
)

func orgCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Show or change the organization the client is scoped to",
	}
	cmd.AddCommand(orgShowCmd(o), orgSetCmd(o))
	return cmd
}

func orgShowCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the organization slug the next run will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(o, func(cfg config.Config, store *db.DB) error {
				slug, err := config.ResolveOrganizationSlug(o.org, cfg, store)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), slug)
				return nil
			})
		},
	}
}

func orgSetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <slug>",
		Short: "Store the organization slug used by later runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(o, func(cfg config.Config, store *db.DB) error {
				if err := store.SetOrganizationSlug(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "organization set to %s\n", args[0])
				if cfg.OrganizationSlug != "" && cfg.OrganizationSlug != args[0] {
					fmt.Fprintf(cmd.ErrOrStderr(), "note: config sets organization_slug=%s, which takes precedence\n", cfg.OrganizationSlug)
				}
				return nil
			})
		},
	}
}

func withStore(o *options, fn func(config.Config, *db.DB) error) error {
	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	store, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}
