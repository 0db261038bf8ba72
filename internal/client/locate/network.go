package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultNetworkURL = "https://ipapi.co/json/"

// Network resolves an approximate position from the caller's IP address.
type Network struct {
	URL    string
	Client *http.Client
}

func (n Network) Name() TierName { return TierNetwork }

type ipLookup struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
	Region    string   `json:"region"`
	Error     bool     `json:"error"`
	Reason    string   `json:"reason"`
}

func (n Network) Detect(ctx context.Context) (Result, error) {
	url := n.URL
	if url == "" {
		url = DefaultNetworkURL
	}
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("ip lookup status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out ipLookup
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode ip lookup: %w", err)
	}
	if out.Error {
		return Result{}, fmt.Errorf("ip lookup: %s", out.Reason)
	}
	if out.Latitude == nil || out.Longitude == nil {
		return Result{}, fmt.Errorf("ip lookup returned no coordinates")
	}

	status := "Detected via network"
	if place := joinNonEmpty(out.City, out.Region); place != "" {
		status += ": " + place
	}
	return Result{
		Location: FormatCoordinates(*out.Latitude, *out.Longitude),
		Status:   status,
	}, nil
}

func joinNonEmpty(parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, ", ")
}
