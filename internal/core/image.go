package core

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes bounds decoded sketch uploads.
const MaxImageBytes = 10 << 20

// ImageDataURI sniffs raw bytes and renders them as a base64 data URI.
// Non-image payloads are rejected as validation errors.
func ImageDataURI(data []byte) (string, error) {
	if len(data) == 0 {
		return "", Validationf("image is required")
	}
	if len(data) > MaxImageBytes {
		return "", Validationf("image exceeds %d bytes", MaxImageBytes)
	}
	contentType := mimetype.Detect(data).String()
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", Validationf("image has unsupported content type %q", contentType)
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", contentType, encoded), nil
}

// NormalizeImageDataURI decodes a caller-supplied data URI and re-encodes it
// with the sniffed content type, so a mislabelled or non-image payload never
// reaches the provider.
func NormalizeImageDataURI(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", Validationf("image is required")
	}
	if !strings.HasPrefix(uri, "data:") {
		return "", Validationf("image must be a data URI")
	}
	header, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return "", Validationf("image data URI has no payload")
	}
	if !strings.HasSuffix(header, ";base64") {
		return "", Validationf("image data URI must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", &Error{Kind: KindValidation, Message: "image data URI is not valid base64", Err: err}
	}
	return ImageDataURI(data)
}
