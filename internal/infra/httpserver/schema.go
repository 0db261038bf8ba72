package httpserver

import (
	"github.com/bryanwahyu/tenant-scan/internal/middleware"
)

// Nulls are accepted here; the service decides what counts as a usable image.
var analyzeSchema = middleware.MustSchema(`{
  "type": "object",
  "properties": {
    "images": {
      "type": ["array", "null"],
      "items": {
        "type": ["object", "null"],
        "properties": {
          "data":     {"type": ["string", "null"]},
          "mimeType": {"type": ["string", "null"]}
        }
      }
    },
    "details":  {"type": ["string", "null"]},
    "location": {"type": ["string", "null"]}
  }
}`)

var clinicsSchema = middleware.MustSchema(`{
  "type": "object",
  "required": ["lat", "lng"],
  "properties": {
    "lat": {"type": "number"},
    "lng": {"type": "number"}
  }
}`)
