package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/wukong"
)

func nodesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List the active nodes of a collection",
		Long: `List the active nodes reported by the membership source for the collection,
or every active node when no collection is given. Without a membership source
the configured nodes are listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.connect(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			var addrs []string
			if s.source != nil {
				addrs, err = s.source.ActiveAddresses(cmd.Context(), s.config.Collection)
				if err != nil {
					return err
				}
			} else {
				for _, n := range s.config.Nodes {
					if addr := wukong.NormalizeAddress(n); addr != "" {
						addrs = append(addrs, addr)
					}
				}
			}

			for _, addr := range addrs {
				fmt.Fprintln(cmd.OutOrStdout(), addr)
			}

			return nil
		},
	}
}

func publishCmd(root *rootOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "publish [address...]",
		Short: "Publish the active nodes of a collection to the NATS membership bucket",
		Example: `  wukong publish -c cities --nats-url nats://localhost:4222 solr1:8983 solr2:8983
  wukong publish -c cities --nats-url nats://localhost:4222 --remove`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !remove && len(args) == 0 {
				return fmt.Errorf("at least one address is required")
			}

			s, err := root.connect(cmd.Context(), cmd, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.source == nil || s.source.nats == nil {
				return fmt.Errorf("publishing requires NATS membership (--nats-url)")
			}

			if remove {
				return s.source.nats.Remove(cmd.Context(), s.config.Collection)
			}

			if err := s.source.nats.Publish(cmd.Context(), s.config.Collection, args...); err != nil {
				return err
			}

			s.logger.Info("published nodes",
				"resource", s.config.Collection,
				"nodes", len(args),
			)

			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the collection's entry instead")

	return cmd
}
