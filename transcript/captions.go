package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const timedTextURL = "https://video.google.com/timedtext"

// TimedText pulls caption tracks from YouTube's public timedtext endpoint.
// The Data API cannot download third-party captions without channel OAuth,
// so this is the same route the usual transcript tooling takes.
type TimedText struct {
	baseURL string
	lang    string
	client  *http.Client
}

func NewTimedText(lang string) *TimedText {
	return &TimedText{
		baseURL: timedTextURL,
		lang:    lang,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Captions returns the caption text of a video as one plain string, segment
// texts joined by single spaces. An empty string means the video has no
// caption track in the configured language.
func (t *TimedText) Captions(ctx context.Context, videoID string) (string, error) {
	params := url.Values{}
	params.Set("lang", t.lang)
	params.Set("v", videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("timedtext returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	// no caption track in this language comes back as an empty 200
	if len(strings.TrimSpace(string(body))) == 0 {
		return "", nil
	}

	var doc struct {
		Texts []struct {
			Value string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil {
		return "", fmt.Errorf("decode timedtext: %w", err)
	}

	segments := make([]string, 0, len(doc.Texts))
	for _, segment := range doc.Texts {
		text := strings.TrimSpace(html.UnescapeString(segment.Value))
		if text == "" {
			continue
		}
		segments = append(segments, text)
	}

	return strings.Join(segments, " "), nil
}
