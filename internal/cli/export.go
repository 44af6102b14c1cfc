package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/export"
	"github.com/BenjaminSRussell/gositemap/internal/parser"
	"github.com/BenjaminSRussell/gositemap/internal/types"
	"github.com/spf13/cobra"
)

type exportFlags struct {
	format     string
	outputDir  string
	outputFile string
	lastmod    bool
}

// NewExportCmd creates the export command. It turns a plain URL list, one
// URL per line, into a sitemap without crawling.
func NewExportCmd() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <url-list>",
		Short: "Export a URL list to a sitemap",
		Long: `Read URLs from a file (or "-" for stdin), one per line, and write them as a
sitemap. Blank lines and lines starting with # are ignored; URLs are normalized
and de-duplicated in input order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := types.ParseOutputFormat(flags.format)
			if err != nil {
				return err
			}

			urls, err := readURLList(cmd, args[0])
			if err != nil {
				return err
			}

			opts := export.Options{FileName: flags.outputFile}
			if flags.lastmod {
				opts.Lastmod = time.Now().UTC().Truncate(time.Second)
			}

			exporter, err := export.NewExporter(flags.outputDir, opts)
			if err != nil {
				return err
			}

			path, err := exporter.Export(urls, format)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully exported %d URLs to %s\n", len(urls), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", string(types.FormatXML), "Output format: xml/json/txt")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", ".", "Directory for the sitemap file")
	cmd.Flags().StringVar(&flags.outputFile, "output-file", "", "Sitemap file name (default sitemap.<format>)")
	cmd.Flags().BoolVar(&flags.lastmod, "lastmod", false, "Add <lastmod> to XML output")

	return cmd
}

func readURLList(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path) //nolint:gosec // user supplied input file
		if err != nil {
			return nil, fmt.Errorf("failed to open url list: %w", err)
		}
		defer f.Close()
		r = f
	}

	seen := make(map[string]bool)
	urls := make([]string, 0)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		normalized := parser.NormalizeURL(line, "")
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		urls = append(urls, normalized)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read url list: %w", err)
	}

	return urls, nil
}
