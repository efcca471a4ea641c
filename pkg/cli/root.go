package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/getmockd/canonrest/pkg/client"
	"github.com/getmockd/canonrest/pkg/cli/internal/output"
	"github.com/getmockd/canonrest/pkg/resource"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// DefaultServerURL is used when neither --server nor CANONREST_SERVER is set.
const DefaultServerURL = client.DefaultBaseURL

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	serverURL  string
	basePath   string
	jsonOutput bool
	xml        bool
}

// NewRootCmd builds the complete command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "canonrest",
		Short: "canonrest serves a keyed resource collection over HTTP with ETag concurrency",
		Long: `canonrest runs an in-memory REST resource service with optimistic
concurrency control: every resource carries an ETag, and writes can be made
conditional with If-Match.

Use 'canonrest serve' to start the server and the other commands to work
with a running one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverDefault := os.Getenv("CANONREST_SERVER")
	if serverDefault == "" {
		serverDefault = DefaultServerURL
	}
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", serverDefault, "Server base URL (or set CANONREST_SERVER)")
	rootCmd.PersistentFlags().StringVar(&opts.basePath, "base-path", client.DefaultBasePath, "Collection path on the server")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().BoolVar(&opts.xml, "xml", false, "Exchange application/xml bodies with the server")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newPutCmd(opts),
		newUpsertCmd(opts),
		newDeleteCmd(opts),
		newResetCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(opts),
	)
	return rootCmd
}

// Execute runs the command line. This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) client() *client.Client {
	opts := []client.Option{client.WithBasePath(o.basePath)}
	if o.xml {
		opts = append(opts, client.WithXML())
	}
	return client.New(o.serverURL, opts...)
}

// printOne writes a single resource as JSON or a table depending on --json.
func (o *rootOptions) printOne(cmd *cobra.Command, r resource.Resource) error {
	if o.jsonOutput {
		return output.JSON(cmd.OutOrStdout(), r)
	}
	return output.Resources(cmd.OutOrStdout(), r)
}

func (o *rootOptions) printList(cmd *cobra.Command, rs []resource.Resource) error {
	if o.jsonOutput {
		if rs == nil {
			rs = []resource.Resource{}
		}
		return output.JSON(cmd.OutOrStdout(), rs)
	}
	return output.Resources(cmd.OutOrStdout(), rs...)
}

func parseKeyArg(raw string) (int, error) {
	key, err := strconv.Atoi(raw)
	if err != nil || key < 0 {
		return 0, fmt.Errorf("invalid key %q: must be a non-negative integer", raw)
	}
	return key, nil
}
