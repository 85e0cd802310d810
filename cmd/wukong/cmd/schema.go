package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func schemaCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema of a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.connect(cmd.Context(), cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			schema, err := s.collection.FetchSchema(cmd.Context())
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), schema)
		},
	}
}

func aliveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "alive",
		Short: "Check that every replica of a collection is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.connect(cmd.Context(), cmd, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.collection.IsAlive(cmd.Context()) {
				return fmt.Errorf("collection %s is not alive", s.config.Collection)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "collection %s is alive\n", s.config.Collection)

			return nil
		},
	}
}
