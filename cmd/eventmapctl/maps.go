package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/playperu/eventmap/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations, optionally seeding the demo map",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeDB, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			v, err := migrations.Version(st.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)

			if seed, _ := cmd.Flags().GetBool("seed-demo"); !seed {
				return nil
			}
			created, err := st.SeedDemo(cmd.Context())
			if err != nil {
				return fmt.Errorf("seeding demo map: %w", err)
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "demo map created and activated")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "maps already exist, demo not seeded")
			}
			return nil
		},
	}
	cmd.Flags().Bool("seed-demo", false, "Create the demo festival map when the database is empty")
	return cmd
}

func newMapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maps",
		Short: "List maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, closeDB, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			maps, err := st.ListMaps(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTYLE\tACTIVE")
			for _, m := range maps {
				active := ""
				if m.Active {
					active = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Style, active)
			}
			return tw.Flush()
		},
	}
}

func newActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <map-id>",
		Short: "Make a map the one visitors see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeDB, err := openStore(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := st.SetActiveMap(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("activating %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active map: %s\n", args[0])
			return nil
		},
	}
}
