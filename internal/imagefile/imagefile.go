// Package imagefile validates and loads sketch images before upload.
//
// The upload preflight (extension allowlist, 10 MB ceiling) runs entirely
// client-side so an oversized or unsupported file never costs a network
// round trip; the image-processing service re-checks both and remains the
// authority. EXIF capture metadata is extracted with evanoberholster/imagemeta
// for display and logging only — extraction failure never blocks an upload.
package imagefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// MaxUploadBytes is the client-side upload size ceiling.
const MaxUploadBytes = 10 * 1024 * 1024

// SupportedExtensions maps accepted image file extensions to the MIME type
// sent in the multipart upload. The set mirrors what the image-processing
// service can decode.
var SupportedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// File is a validated, fully read sketch image ready for upload.
// Data is held in memory; the size ceiling keeps that cheap.
type File struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
	Data     []byte
	Metadata *CaptureMetadata // nil when extraction failed or no EXIF present
}

// Load validates path against the upload preflight rules and reads the file.
func Load(path string) (*File, error) {
	log.Debug().Str("path", path).Msg("Loading image file")

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, err := GetMIMEType(ext)
	if err != nil {
		return nil, err
	}

	if info.Size() == 0 {
		return nil, fmt.Errorf("file is empty: %s", path)
	}
	if info.Size() > MaxUploadBytes {
		return nil, fmt.Errorf("file is %.1f MB, the upload limit is %d MB",
			float64(info.Size())/(1024*1024), MaxUploadBytes/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f := &File{
		Path:     path,
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Size:     info.Size(),
		Data:     data,
	}

	meta, err := ExtractCaptureMetadata(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("No EXIF metadata extracted, continuing without it")
	} else {
		f.Metadata = meta
	}

	evt := log.Info().
		Str("path", path).
		Str("mime_type", mimeType).
		Int64("size_bytes", info.Size()).
		Bool("has_metadata", f.Metadata != nil)
	if f.Metadata != nil {
		if summary := f.Metadata.Summary(); summary != "" {
			evt = evt.Str("capture", summary)
		}
	}
	evt.Msg("Image file loaded")

	return f, nil
}

// GetMIMEType returns the MIME type for a given file extension.
func GetMIMEType(ext string) (string, error) {
	if mimeType, ok := SupportedExtensions[strings.ToLower(ext)]; ok {
		return mimeType, nil
	}
	return "", fmt.Errorf("unsupported file extension: %s (accepted: jpg, jpeg, png, tif, tiff, bmp, webp)", ext)
}

// IsSupported returns true if the file extension is an accepted image type.
func IsSupported(ext string) bool {
	_, ok := SupportedExtensions[strings.ToLower(ext)]
	return ok
}
