// Package classroom is a thin client for the Google Classroom REST API.
//
// Endpoints used:
//
//	GET /courses                          → list courses
//	GET /courses/{id}/courseWorkMaterials → study materials
//	GET /courses/{id}/announcements       → teacher announcements
//	GET /courses/{id}/courseWork          → assignments (Drive-attached only)
//
// The client is stateless and safe for concurrent use.
package classroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/teachmate/teachmate/internal/util"
)

// DefaultBaseURL is the production Classroom API endpoint.
const DefaultBaseURL = "https://classroom.googleapis.com/v1"

const requestTimeout = 30 * time.Second

// Fetch failures are surfaced as tagged errors so callers can tell
// "nothing to sync" apart from "must re-authenticate" and "worth retrying".
var (
	ErrUnauthorized = errors.New("classroom: 401 unauthorized, token may be expired")
	ErrForbidden    = errors.New("classroom: 403 forbidden, missing scope or permission")
	ErrTimeout      = errors.New("classroom: request timed out")
)

// StatusError reports a non-200 response not covered by a sentinel error.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("classroom: unexpected status %d on %s", e.Code, e.URL)
}

// Course is a remote course record. Google guarantees at least id and name.
type Course struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attachment is one entry of an item's materials[] list.
type Attachment struct {
	DriveFile *struct {
		DriveFile struct {
			AlternateLink string `json:"alternateLink"`
		} `json:"driveFile"`
	} `json:"driveFile,omitempty"`
	Link *struct {
		URL string `json:"url"`
	} `json:"link,omitempty"`
	YouTubeVideo *struct {
		AlternateLink string `json:"alternateLink"`
	} `json:"youtubeVideo,omitempty"`
}

// Item is a content record from any of the three per-course endpoints.
// Announcements carry Text, materials and coursework carry Title/Description.
type Item struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Text        string       `json:"text"`
	Materials   []Attachment `json:"materials"`
}

// Client calls the Classroom API with bearer-token auth.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. An empty baseURL selects production.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// ListCourses fetches all courses visible to the token's user, following
// pagination until exhausted.
func (c *Client) ListCourses(ctx context.Context, accessToken string) ([]Course, error) {
	var courses []Course
	pageToken := ""
	for {
		var page struct {
			Courses       []Course `json:"courses"`
			NextPageToken string   `json:"nextPageToken"`
		}
		if err := c.getJSON(ctx, accessToken, c.baseURL+"/courses", pageToken, &page); err != nil {
			return nil, err
		}
		courses = append(courses, page.Courses...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	log.Printf("✅ Fetched %d courses", len(courses))
	return courses, nil
}

// ListMaterials fetches the study materials posted in a course
// (courseWorkMaterials): resources posted explicitly, not assignments
// and not announcements.
func (c *Client) ListMaterials(ctx context.Context, accessToken, courseID string) ([]Item, error) {
	items, err := c.listItems(ctx, accessToken, courseID, "courseWorkMaterials", "courseWorkMaterial")
	if err != nil {
		return nil, err
	}
	log.Printf("  ✅ Fetched %d materials for course %s", len(items), courseID)
	return items, nil
}

// ListAnnouncements fetches all announcements posted in a course.
// Announcements are plain-text posts; attachments are optional.
func (c *Client) ListAnnouncements(ctx context.Context, accessToken, courseID string) ([]Item, error) {
	items, err := c.listItems(ctx, accessToken, courseID, "announcements", "announcements")
	if err != nil {
		return nil, err
	}
	log.Printf("  ✅ Fetched %d announcements for course %s", len(items), courseID)
	return items, nil
}

// ListCoursework fetches assignments, keeping only those with at least one
// Drive file attachment. Pure Google Form / MCQ assignments carry no
// extractable text and are dropped; that is a filter, not an error.
func (c *Client) ListCoursework(ctx context.Context, accessToken, courseID string) ([]Item, error) {
	all, err := c.listItems(ctx, accessToken, courseID, "courseWork", "courseWork")
	if err != nil {
		return nil, err
	}

	filtered := all[:0]
	for _, item := range all {
		if hasDriveFile(item.Materials) {
			filtered = append(filtered, item)
		}
	}
	log.Printf("  ✅ Fetched %d coursework items for course %s (skipped %d with no Drive attachments)",
		len(filtered), courseID, len(all)-len(filtered))
	return filtered, nil
}

// listItems pages through one per-course content endpoint. path is the URL
// suffix, key the JSON field holding the item array (Google's naming is not
// uniform across the three endpoints).
func (c *Client) listItems(ctx context.Context, accessToken, courseID, path, key string) ([]Item, error) {
	endpoint := fmt.Sprintf("%s/courses/%s/%s", c.baseURL, url.PathEscape(courseID), path)

	var items []Item
	pageToken := ""
	for {
		var page map[string]json.RawMessage
		if err := c.getJSON(ctx, accessToken, endpoint, pageToken, &page); err != nil {
			return nil, err
		}

		if raw, ok := page[key]; ok {
			var batch []Item
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("classroom: decode %s: %w", path, err)
			}
			items = append(items, batch...)
		}

		var next string
		if raw, ok := page["nextPageToken"]; ok {
			if err := json.Unmarshal(raw, &next); err != nil {
				return nil, fmt.Errorf("classroom: decode page token: %w", err)
			}
		}
		if next == "" {
			return items, nil
		}
		pageToken = next
	}
}

// getJSON performs one authenticated GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, accessToken, endpoint, pageToken string, out any) error {
	u := endpoint
	if pageToken != "" {
		u += "?pageToken=" + url.QueryEscape(pageToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("classroom: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Printf("❌ Timeout on %s", u)
			return ErrTimeout
		}
		return fmt.Errorf("classroom: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("classroom: decode response from %s: %w", u, err)
		}
		return nil
	case http.StatusUnauthorized:
		log.Printf("❌ 401 Unauthorized on %s, token may be expired", u)
		return ErrUnauthorized
	case http.StatusForbidden:
		log.Printf("❌ 403 Forbidden on %s, missing scope or permission", u)
		return ErrForbidden
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Printf("❌ %d on %s: %s", resp.StatusCode, u, util.TruncateLog(string(body), 512))
		return &StatusError{Code: resp.StatusCode, URL: u}
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func hasDriveFile(materials []Attachment) bool {
	for _, m := range materials {
		if m.DriveFile != nil {
			return true
		}
	}
	return false
}

// ExtractResourceURL picks one representative URL from an item's attachment
// list. Priority: Drive file link, then external link, then YouTube link.
// Returns "" when nothing is attached.
func ExtractResourceURL(materials []Attachment) string {
	for _, m := range materials {
		if m.DriveFile != nil && m.DriveFile.DriveFile.AlternateLink != "" {
			return m.DriveFile.DriveFile.AlternateLink
		}
	}
	for _, m := range materials {
		if m.Link != nil && m.Link.URL != "" {
			return m.Link.URL
		}
	}
	for _, m := range materials {
		if m.YouTubeVideo != nil && m.YouTubeVideo.AlternateLink != "" {
			return m.YouTubeVideo.AlternateLink
		}
	}
	return ""
}
