// Package sponsorblock previews what yt-dlp's --sponsorblock-remove will cut
// by asking the SponsorBlock API for a video's skip segments.
package sponsorblock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://sponsor.ajay.app"

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

type SkipSegment struct {
	Segment       []float64 `json:"segment"`
	UUID          string    `json:"UUID"`
	Category      string    `json:"category"`
	VideoDuration float64   `json:"videoDuration"`
	ActionType    string    `json:"actionType"`
	Votes         int       `json:"votes"`
	Description   string    `json:"description"`
}

// GetSkipSegments returns the skip segments of a YouTube video in the given
// categories. A video without segments yields an empty slice.
func (c *Client) GetSkipSegments(ctx context.Context, videoID string, categories []string) ([]SkipSegment, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, fmt.Errorf("videoID is required")
	}

	u, err := url.Parse(c.baseURL + "/api/skipSegments")
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("videoID", videoID)
	q.Set("service", "YouTube")
	if len(categories) > 0 {
		b, err := json.Marshal(categories)
		if err != nil {
			return nil, err
		}
		q.Set("categories", string(b))
	}
	q.Set("actionTypes", `["skip"]`)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []SkipSegment{}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		return nil, fmt.Errorf("sponsorblock: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out []SkipSegment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}

	return out, nil
}
