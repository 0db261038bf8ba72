package submission

import (
	"encoding/base64"
	"strings"

	"github.com/bryanwahyu/tenant-scan/internal/domain/report"
)

// SplitDataURL splits "data:<mime>;base64,<payload>" into an Image.
// ok is false when there is no payload after the comma.
func SplitDataURL(s string) (report.Image, bool) {
	meta, data, found := strings.Cut(s, ",")
	if !found || data == "" {
		return report.Image{}, false
	}
	mime := report.DefaultMIMEType
	if rest, ok := strings.CutPrefix(meta, "data:"); ok {
		if m, _, ok := strings.Cut(rest, ";base64"); ok && m != "" {
			mime = m
		}
	}
	return report.Image{Data: data, MimeType: mime}, true
}

// FromDataURLs converts data URLs to images, silently dropping the ones that
// do not split.
func FromDataURLs(urls []string) []report.Image {
	out := make([]report.Image, 0, len(urls))
	for _, u := range urls {
		if img, ok := SplitDataURL(u); ok {
			out = append(out, img)
		}
	}
	return out
}

// EncodeDataURL builds a base64 data URL.
func EncodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
