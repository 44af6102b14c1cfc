package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/types"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// URLSet represents the XML sitemap structure
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL in the sitemap
type URL struct {
	Loc     string `xml:"loc"`
	Lastmod string `xml:"lastmod,omitempty"`
}

// Options tunes the encoded artifact
type Options struct {
	// FileName overrides the default sitemap.<ext> name
	FileName string

	// Lastmod, when non-zero, is written as <lastmod> for every XML entry
	Lastmod time.Time
}

// Exporter writes sitemap artifacts into a directory
type Exporter struct {
	outputDir string
	opts      Options
}

func NewExporter(outputDir string, opts Options) (*Exporter, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Exporter{
		outputDir: outputDir,
		opts:      opts,
	}, nil
}

// Path returns the file the exporter writes for format
func (e *Exporter) Path(format types.OutputFormat) string {
	name := e.opts.FileName
	if name == "" {
		name = "sitemap." + format.Extension()
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.outputDir, name)
}

// Export encodes urls in the given format and writes the artifact.
// It returns the path of the written file.
func (e *Exporter) Export(urls []string, format types.OutputFormat) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, urls, format, e.opts); err != nil {
		return "", err
	}

	path := e.Path(format)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write sitemap: %w", err)
	}

	return path, nil
}

// Encode writes urls to w in the given format, preserving their order
func Encode(w io.Writer, urls []string, format types.OutputFormat, opts Options) error {
	switch format {
	case types.FormatXML:
		return EncodeXML(w, urls, opts.Lastmod)
	case types.FormatJSON:
		return EncodeJSON(w, urls)
	case types.FormatText:
		return EncodeText(w, urls)
	}
	return fmt.Errorf("%w: %q", types.ErrUnknownFormat, format)
}

// EncodeXML writes a sitemaps.org urlset document
func EncodeXML(w io.Writer, urls []string, lastmod time.Time) error {
	urlSet := URLSet{
		XMLNS: sitemapNamespace,
		URLs:  make([]URL, 0, len(urls)),
	}

	for _, loc := range urls {
		u := URL{Loc: loc}
		if !lastmod.IsZero() {
			u.Lastmod = lastmod.UTC().Format(time.RFC3339)
		}
		urlSet.URLs = append(urlSet.URLs, u)
	}

	output, err := xml.MarshalIndent(urlSet, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	if _, err := w.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// EncodeJSON writes an indented JSON array of URLs
func EncodeJSON(w io.Writer, urls []string) error {
	if urls == nil {
		urls = []string{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(urls); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// EncodeText writes one URL per line
func EncodeText(w io.Writer, urls []string) error {
	if _, err := io.WriteString(w, strings.Join(urls, "\n")); err != nil {
		return fmt.Errorf("failed to write text sitemap: %w", err)
	}
	return nil
}
