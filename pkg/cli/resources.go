package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/canonrest/pkg/client"
	"github.com/getmockd/canonrest/pkg/resource"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var skip, take int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Long: `List resources ordered by key.

Examples:
  canonrest list
  canonrest list --skip 10 --take 5
  canonrest list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if skip < 0 || take < 0 {
				return fmt.Errorf("--skip and --take must not be negative")
			}
			rs, err := opts.client().List(cmd.Context(), skip, take)
			if err != nil {
				return err
			}
			return opts.printList(cmd, rs)
		},
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "Number of resources to skip")
	cmd.Flags().IntVar(&take, "take", 0, "Maximum number of resources to return (0 = server default)")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client().Get(cmd.Context(), key)
			if err != nil {
				return err
			}
			return opts.printOne(cmd, res)
		},
	}
}

func newCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <data>",
		Short: "Create a resource under the next free key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Create(cmd.Context(), resource.Resource{Data: args[0]})
			if err != nil {
				return err
			}
			return opts.printOne(cmd, res)
		},
	}
}

func newPutCmd(opts *rootOptions) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "put <key> <data>",
		Short: "Replace the data of an existing resource",
		Long: `Replace the data of an existing resource.

With --tag the write is conditional: it fails if the resource no longer
carries that tag. Without --tag the current tag is read first and the write
is retried if another writer changes the resource in between.

Examples:
  canonrest put 3 "new data"
  canonrest put 3 "new data" --tag 0b6c...`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return err
			}
			c := opts.client()

			var res resource.Resource
			if tag != "" {
				res, err = c.Replace(cmd.Context(), resource.Resource{Key: key, Data: args[1], Tag: tag})
			} else {
				res, err = c.UpdateWithRetry(cmd.Context(), key, func(r *resource.Resource) error {
					if r.Data == args[1] {
						return client.ErrNoChange
					}
					r.Data = args[1]
					return nil
				})
			}
			if err != nil {
				return err
			}
			return opts.printOne(cmd, res)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only replace if the resource still has this tag")
	return cmd
}

func newUpsertCmd(opts *rootOptions) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "upsert <key> <data>",
		Short: "Create a resource under key, or update it if it exists",
		Long: `Create a resource under key, or update it if it exists.

An existing resource is only updated when --tag matches its current tag;
otherwise it is returned unchanged.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return err
			}
			res, created, err := opts.client().Upsert(cmd.Context(), key, resource.Resource{Data: args[1], Tag: tag})
			if err != nil {
				return err
			}
			if !opts.jsonOutput && created {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Created resource %d\n", res.Key)
			}
			return opts.printOne(cmd, res)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Current tag of the resource to update")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKeyArg(args[0])
			if err != nil {
				return err
			}
			res, ok, err := opts.client().Delete(cmd.Context(), key, tag)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Resource %d does not exist\n", key)
				return nil
			}
			return opts.printOne(cmd, res)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Only delete if the resource still has this tag")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard all resources and restore the seed data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().Reset(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Repository reset")
			return nil
		},
	}
}
