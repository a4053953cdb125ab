// Package icc implements bindings for the International Code Council's
// public content API. The API lays documents out as a RESTful tree: an info
// record, a nested table of contents, and one markup fragment per section.
package icc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production endpoint for the ICC content API.
const DefaultBaseURL = "https://codes.iccsafe.org/api/"

// DocumentInfo is the decoded envelope of the content/info endpoint.
type DocumentInfo struct {
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
}

// TOCLink carries the alternate title location some TOC entries use.
type TOCLink struct {
	Title string `json:"title"`
}

// TOCEntry is one entry of a table-of-contents page. Entries with a
// ContentID have a markup fragment to fetch; entries with SubSections list
// further entries. An entry can be both.
type TOCEntry struct {
	ContentID   int        `json:"content_id"`
	Title       string     `json:"title"`
	Link        *TOCLink   `json:"link"`
	SubSections []TOCEntry `json:"sub_sections"`
}

// DisplayTitle returns the entry's title, falling back to the link title
// when the entry itself is untitled.
func (e TOCEntry) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}
	if e.Link != nil {
		return e.Link.Title
	}
	return ""
}

// InfoPath returns the API-relative path of a document's info record.
// API-relative paths double as content store keys.
func InfoPath(documentID int) string {
	return fmt.Sprintf("content/info/%d", documentID)
}

// TOCPath returns the API-relative path of a document's table of contents.
func TOCPath(documentID int) string {
	return fmt.Sprintf("content/chapters/%d", documentID)
}

// ContentPath returns the API-relative path of one section's markup
// fragment.
func ContentPath(documentID, contentID int) string {
	return fmt.Sprintf("content/chapter-xml/%d/%d", documentID, contentID)
}

// ClientOptions configures a Client.
type ClientOptions struct {
	BaseURL   string        // defaults to DefaultBaseURL
	UserAgent string        // sent on every request when non-empty
	Timeout   time.Duration // per-request HTTP timeout
	Limiter   *Limiter      // required: shared pacing gate
	Logger    *slog.Logger  // defaults to a discarding logger
}

// Client issues rate-limited requests against the content API. It performs
// no caching and no retries; both live with the caller.
type Client struct {
	baseURL   string
	userAgent string
	limiter   *Limiter
	http      *http.Client
	log       *slog.Logger
}

// NewClient returns a Client. The limiter is consulted before every request
// the client issues, so all call sites share one rate budget.
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = NewLimiter(time.Second, 5)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		limiter:   limiter,
		http:      &http.Client{Timeout: opts.Timeout},
		log:       log,
	}
}

// Get fetches one API-relative path and returns the raw response body.
// It blocks on the shared limiter before issuing the request.
func (c *Client) Get(ctx context.Context, relPath string) ([]byte, error) {
	fullURL := c.baseURL + relPath

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.log.Debug("fetch", "url", fullURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{URL: fullURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: fullURL, Err: err}
	}
	c.log.Debug("response", "url", fullURL, "bytes", len(body))
	return body, nil
}

// Info fetches and decodes a document's info record, returning both the
// decoded envelope and the raw bytes for caching.
func (c *Client) Info(ctx context.Context, documentID int) (DocumentInfo, []byte, error) {
	raw, err := c.Get(ctx, InfoPath(documentID))
	if err != nil {
		return DocumentInfo{}, nil, err
	}
	info, err := ParseInfo(InfoPath(documentID), raw)
	if err != nil {
		return DocumentInfo{}, nil, err
	}
	return info, raw, nil
}

// TOC fetches and decodes a document's table of contents, returning both
// the decoded entries and the raw bytes for caching.
func (c *Client) TOC(ctx context.Context, documentID int) ([]TOCEntry, []byte, error) {
	raw, err := c.Get(ctx, TOCPath(documentID))
	if err != nil {
		return nil, nil, err
	}
	entries, err := ParseTOC(TOCPath(documentID), raw)
	if err != nil {
		return nil, nil, err
	}
	return entries, raw, nil
}

// Content fetches one section's markup fragment, returning the unwrapped
// markup and the raw bytes for caching.
func (c *Client) Content(ctx context.Context, documentID, contentID int) (string, []byte, error) {
	raw, err := c.Get(ctx, ContentPath(documentID, contentID))
	if err != nil {
		return "", nil, err
	}
	markup, err := ParseContent(ContentPath(documentID, contentID), raw)
	if err != nil {
		return "", nil, err
	}
	return markup, raw, nil
}

// ParseInfo decodes an info envelope. src names the origin (URL or store
// key) for error reporting.
func ParseInfo(src string, data []byte) (DocumentInfo, error) {
	var info DocumentInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return DocumentInfo{}, &DecodeError{URL: src, Err: err}
	}
	return info, nil
}

// ParseTOC decodes a table-of-contents envelope: a JSON array of entries.
func ParseTOC(src string, data []byte) ([]TOCEntry, error) {
	var entries []TOCEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &DecodeError{URL: src, Err: err}
	}
	return entries, nil
}

// ParseContent decodes a content envelope: a JSON string holding markup.
func ParseContent(src string, data []byte) (string, error) {
	var markup string
	if err := json.Unmarshal(data, &markup); err != nil {
		return "", &DecodeError{URL: src, Err: err}
	}
	return markup, nil
}
