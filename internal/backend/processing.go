package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/AJ662/sketchtocad-cli/internal/contracts"
	"github.com/AJ662/sketchtocad-cli/internal/imagefile"
)

// UploadImage runs the upload preflight on path, then posts the image as a
// multipart request to the image-processing service. A successful response
// is structurally validated before it is returned; the caller owns caching.
// The EXIF capture metadata read during preflight rides along for display,
// nil when the file carried none.
//
// Every upload creates a new backend session — repeating the call is safe
// and intentional.
func (a *Adapter) UploadImage(ctx context.Context, path string) (*contracts.ProcessingResult, *imagefile.CaptureMetadata, error) {
	const operation = "upload-image"

	img, err := imagefile.Load(path)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(img.Name)))
	header.Set("Content-Type", img.MIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, nil, fmt.Errorf("build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, nil, fmt.Errorf("build multipart body: %w", err)
	}

	log.Info().
		Str("file", img.Name).
		Int64("sizeBytes", img.Size).
		Msg("Uploading image for processing")

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.processingURL+"/process-image", &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, _, err := a.send(req, ServiceProcessing, operation, callTimeout)
	if err != nil {
		return nil, nil, err
	}

	var result contracts.ProcessingResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, malformedResponse(ServiceProcessing, operation,
			fmt.Errorf("parse response: %w (body: %s)", err, truncate(string(body), 200)))
	}
	if err := result.Validate(); err != nil {
		return nil, nil, malformedResponse(ServiceProcessing, operation, err)
	}

	log.Info().
		Str("sessionId", result.SessionID).
		Int("bedCount", result.BedCount).
		Float64("processingTimeMs", result.ProcessingTimeMS).
		Msg("Image processed")

	return &result, img.Metadata, nil
}

// GetSession fetches the backend session metadata for id.
func (a *Adapter) GetSession(ctx context.Context, id string) (*contracts.SessionInfo, error) {
	var info contracts.SessionInfo
	err := a.getJSON(ctx, ServiceProcessing, "get-session",
		a.processingURL+"/session/"+id, callTimeout, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// DeleteSession removes the backend session for id. Used for explicit
// cleanup; the workflow itself never depends on it.
func (a *Adapter) DeleteSession(ctx context.Context, id string) error {
	const operation = "delete-session"

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.processingURL+"/session/"+id, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", operation, err)
	}

	_, _, err = a.send(req, ServiceProcessing, operation, callTimeout)
	return err
}

// ProcessingHealth probes the image-processing service.
func (a *Adapter) ProcessingHealth(ctx context.Context) (contracts.HealthStatus, error) {
	var h contracts.HealthStatus
	err := a.getJSON(ctx, ServiceProcessing, "health",
		a.processingURL+"/health", healthTimeout, &h)
	return h, err
}

// escapeQuotes escapes a filename for a Content-Disposition header.
func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
