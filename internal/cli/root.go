package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
}

// NewRootCmd creates the gositemap root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "gositemap",
		Short: "Generate sitemaps by crawling a website",
		Long: `GoSitemap crawls a website breadth-first from a base URL, honoring robots.txt,
depth and size limits, and writes the discovered URLs as an XML, JSON or text sitemap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level: debug/info/warn/error")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Emit structured JSON logs")

	cmd.AddCommand(NewCrawlCmd(opts))
	cmd.AddCommand(NewExportCmd())

	return cmd
}

// Execute runs the root command with args until ctx is cancelled
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}
