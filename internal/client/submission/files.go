package submission

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// LoadFiles reads image files concurrently and returns their data URLs in
// input order. Files that are not images are reported in skipped.
func LoadFiles(ctx context.Context, paths []string) (urls []string, skipped []string, err error) {
	results := make([]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("read %s: %w", p, err)
			}
			mt := detectMIME(p, data)
			if !strings.HasPrefix(mt, "image/") {
				return nil
			}
			results[i] = EncodeDataURL(mt, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for i, u := range results {
		if u == "" {
			skipped = append(skipped, paths[i])
			continue
		}
		urls = append(urls, u)
	}
	return urls, skipped, nil
}

func detectMIME(path string, data []byte) string {
	if mt := http.DetectContentType(data); strings.HasPrefix(mt, "image/") {
		return mt
	}
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" {
		mt, _, _ = strings.Cut(mt, ";")
		return mt
	}
	return "application/octet-stream"
}
