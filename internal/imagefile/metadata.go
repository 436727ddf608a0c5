package imagefile

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// CaptureMetadata holds EXIF fields worth showing for an uploaded sketch
// photo: where and when it was taken and with what camera.
type CaptureMetadata struct {
	Latitude  float64
	Longitude float64
	HasGPS    bool

	DateTaken time.Time
	HasDate   bool

	CameraMake  string
	CameraModel string
}

// ExtractCaptureMetadata reads EXIF metadata from an image file.
//
// Pure Go via the imagemeta library; only the metadata segment of the file
// is parsed. Many sketch sources (scans, screenshots, exported PNGs) carry
// no EXIF at all, so an error here is expected and the caller treats it as
// "no metadata", never as an upload failure.
func ExtractCaptureMetadata(path string) (*CaptureMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	exifData, err := imagemeta.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	meta := &CaptureMetadata{}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		meta.Latitude = gps.Latitude()
		meta.Longitude = gps.Longitude()
		meta.HasGPS = true
	}

	// Priority: DateTimeOriginal > CreateDate > ModifyDate
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		meta.DateTaken = exifData.DateTimeOriginal()
		meta.HasDate = true
	case !exifData.CreateDate().IsZero():
		meta.DateTaken = exifData.CreateDate()
		meta.HasDate = true
	case !exifData.ModifyDate().IsZero():
		meta.DateTaken = exifData.ModifyDate()
		meta.HasDate = true
	}

	meta.CameraMake = strings.TrimSpace(exifData.Make)
	meta.CameraModel = strings.TrimSpace(exifData.Model)

	log.Debug().
		Str("path", path).
		Bool("has_gps", meta.HasGPS).
		Bool("has_date", meta.HasDate).
		Msg("EXIF metadata extracted")

	return meta, nil
}

// Summary returns a one-line description of the capture metadata for
// terminal display, or an empty string when nothing useful was extracted.
func (m *CaptureMetadata) Summary() string {
	var parts []string

	if m.CameraMake != "" || m.CameraModel != "" {
		parts = append(parts, strings.TrimSpace(m.CameraMake+" "+m.CameraModel))
	}
	if m.HasDate {
		parts = append(parts, m.DateTaken.Format("Jan 2, 2006 3:04 PM"))
	}
	if m.HasGPS {
		parts = append(parts, CoordinatesToDMS(m.Latitude, m.Longitude))
	}

	return strings.Join(parts, " · ")
}

// CoordinatesToDMS converts decimal degrees to degrees, minutes, seconds format.
func CoordinatesToDMS(lat, lon float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	latDeg := int(lat)
	latMin := int((lat - float64(latDeg)) * 60)
	latSec := ((lat-float64(latDeg))*60 - float64(latMin)) * 60

	lonDeg := int(lon)
	lonMin := int((lon - float64(lonDeg)) * 60)
	lonSec := ((lon-float64(lonDeg))*60 - float64(lonMin)) * 60

	return fmt.Sprintf("%d°%d'%.2f\"%s, %d°%d'%.2f\"%s",
		latDeg, latMin, latSec, latDir,
		lonDeg, lonMin, lonSec, lonDir)
}
