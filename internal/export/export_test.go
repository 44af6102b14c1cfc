package export

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BenjaminSRussell/gositemap/internal/types"
)

var testURLs = []string{
	"https://example.com",
	"https://example.com/a",
	"https://example.com/b?x=1&y=2",
}

func TestExporterNew(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "nested", "out")

	exporter, err := NewExporter(tmpDir, Options{})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	if exporter == nil {
		t.Fatal("Expected exporter to be created")
	}
	if _, err := os.Stat(tmpDir); err != nil {
		t.Errorf("Expected output directory to exist: %v", err)
	}
}

func TestExporterPath(t *testing.T) {
	tmpDir := t.TempDir()
	exporter, err := NewExporter(tmpDir, Options{})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	tests := []struct {
		format types.OutputFormat
		want   string
	}{
		{types.FormatXML, "sitemap.xml"},
		{types.FormatJSON, "sitemap.json"},
		{types.FormatText, "sitemap.txt"},
	}
	for _, tt := range tests {
		if got := exporter.Path(tt.format); got != filepath.Join(tmpDir, tt.want) {
			t.Errorf("Path(%s) = %s", tt.format, got)
		}
	}

	named, _ := NewExporter(tmpDir, Options{FileName: "site.xml"})
	if got := named.Path(types.FormatXML); got != filepath.Join(tmpDir, "site.xml") {
		t.Errorf("Expected custom file name, got %s", got)
	}
}

func TestExporterExportXML(t *testing.T) {
	tmpDir := t.TempDir()
	exporter, err := NewExporter(tmpDir, Options{})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	path, err := exporter.Export(testURLs, types.FormatXML)
	if err != nil {
		t.Fatalf("Failed to export sitemap: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected sitemap file to be created: %v", err)
	}

	if !strings.HasPrefix(string(data), xml.Header) {
		t.Error("Expected XML header")
	}

	var urlSet URLSet
	if err := xml.Unmarshal(data, &urlSet); err != nil {
		t.Fatalf("Failed to parse sitemap: %v", err)
	}
	if urlSet.XMLNS != sitemapNamespace {
		t.Errorf("Expected sitemap namespace, got %s", urlSet.XMLNS)
	}
	if len(urlSet.URLs) != len(testURLs) {
		t.Fatalf("Expected %d urls, got %d", len(testURLs), len(urlSet.URLs))
	}
	for i, u := range urlSet.URLs {
		if u.Loc != testURLs[i] {
			t.Errorf("url[%d] = %s, want %s", i, u.Loc, testURLs[i])
		}
		if u.Lastmod != "" {
			t.Errorf("Expected no lastmod, got %s", u.Lastmod)
		}
	}
}

func TestEncodeXMLLastmod(t *testing.T) {
	var buf bytes.Buffer
	lastmod := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := EncodeXML(&buf, testURLs[:1], lastmod); err != nil {
		t.Fatalf("EncodeXML() error = %v", err)
	}
	if !strings.Contains(buf.String(), "<lastmod>2024-05-01T12:00:00Z</lastmod>") {
		t.Errorf("Expected lastmod element, got %s", buf.String())
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, testURLs); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}

	if !strings.Contains(buf.String(), "https://example.com/b?x=1&y=2") {
		t.Errorf("Expected unescaped ampersand, got %s", buf.String())
	}

	var decoded []string
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(decoded) != len(testURLs) || decoded[1] != testURLs[1] {
		t.Errorf("Unexpected decoded urls: %v", decoded)
	}
}

func TestEncodeJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, nil); err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Expected empty array, got %q", buf.String())
	}
}

func TestEncodeText(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeText(&buf, testURLs); err != nil {
		t.Fatalf("EncodeText() error = %v", err)
	}

	lines := strings.Split(buf.String(), "\n")
	if len(lines) != len(testURLs) {
		t.Fatalf("Expected %d lines, got %d", len(testURLs), len(lines))
	}
	if lines[0] != "https://example.com" {
		t.Errorf("Expected visitation order, got %s first", lines[0])
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, testURLs, types.OutputFormat("csv"), Options{})
	if !errors.Is(err, types.ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func TestExporterWriteFailure(t *testing.T) {
	tmpDir := t.TempDir()
	exporter, err := NewExporter(tmpDir, Options{FileName: filepath.Join(tmpDir, "missing", "sitemap.xml")})
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	if _, err := exporter.Export(testURLs, types.FormatXML); err == nil {
		t.Error("Expected write error for missing directory")
	}
}
