// Package exportfile writes export artifacts to local disk: single DXF
// files, and a zip bundle when one run produces several.
package exportfile

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
)

func init() {
	// Swap the stock Deflate for klauspost's at best compression (DDR-013).
	// DXF is plain text and compresses hard; the archive stays readable by
	// any unzip tool.
	zip.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})
}

// Save writes a single artifact into dir under its service-provided
// filename, sanitized. The directory is created if needed. Returns the
// path written.
func Save(dir string, artifact *contracts.ExportArtifact) (string, error) {
	if err := artifact.Validate(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := SanitizeFilename(artifact.Filename)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	log.Info().
		Str("path", path).
		Int("bytes", len(artifact.Data)).
		Msg("Export saved")
	return path, nil
}

// WriteBundle creates a zip archive at path containing every artifact,
// e.g. the summary and detailed exports of one run side by side.
func WriteBundle(path string, artifacts []*contracts.ExportArtifact) error {
	if len(artifacts) == 0 {
		return fmt.Errorf("nothing to bundle")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create bundle: %w", err)
	}

	zipWriter := zip.NewWriter(f)
	for _, artifact := range artifacts {
		if err := artifact.Validate(); err != nil {
			f.Close()
			return err
		}

		header := &zip.FileHeader{
			Name:   SanitizeFilename(artifact.Filename),
			Method: zip.Deflate,
		}
		header.SetModTime(time.Now())

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			f.Close()
			return fmt.Errorf("create bundle entry for %s: %w", header.Name, err)
		}
		if _, err := writer.Write(artifact.Data); err != nil {
			f.Close()
			return fmt.Errorf("write bundle entry for %s: %w", header.Name, err)
		}
	}

	if err := zipWriter.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close bundle: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close bundle file: %w", err)
	}

	log.Info().
		Str("path", path).
		Int("entries", len(artifacts)).
		Msg("Export bundle created")
	return nil
}

// SanitizeFilename makes a service-provided filename safe to write
// locally: any directory prefix is dropped and unsafe characters become
// dashes.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "export.dxf"
	}

	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' || r == ' ' {
			return r
		}
		return '-'
	}, name)
	name = strings.TrimSpace(name)

	if len(name) > 100 {
		name = name[:100]
	}
	if name == "" {
		return "export.dxf"
	}
	return name
}
