// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"mime"
	"net/http"
	"strings"
)

// Supported media types.
const (
	MediaTypeJSON = "application/json"
	MediaTypeXML  = "application/xml"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", MediaTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteXML writes an already encoded XML document with the given status code.
func WriteXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", MediaTypeXML)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteNotModified writes a 304 Not Modified response. The ETag header,
// when set by the caller, is preserved.
func WriteNotModified(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotModified)
}

// RequestMediaType returns the media type of a request body. A missing or
// unparseable Content-Type is treated as JSON.
func RequestMediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return MediaTypeJSON
	}
	if isXML(mt) {
		return MediaTypeXML
	}
	return MediaTypeJSON
}

// Negotiate picks the response media type from the Accept header. XML is
// chosen only when it is listed before any JSON type; everything else is
// JSON.
func Negotiate(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch {
		case isXML(mt):
			return MediaTypeXML
		case mt == MediaTypeJSON || strings.HasSuffix(mt, "+json"):
			return MediaTypeJSON
		}
	}
	return MediaTypeJSON
}

func isXML(mt string) bool {
	return mt == MediaTypeXML || mt == "text/xml" || strings.HasSuffix(mt, "+xml")
}
