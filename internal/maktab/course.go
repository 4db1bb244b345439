// Package maktab enumerates a course's chapters and lecture units through
// the platform's internal JSON API and scrapes lecture pages for media
// URLs. It is the link source feeding the download engine.
package maktab

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/maktabdl/maktabdl/internal/auth"
	"github.com/maktabdl/maktabdl/internal/utils"
)

type Unit struct {
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	Type     string `json:"type"`
	Position int    `json:"position"`
}

type Chapter struct {
	Title string `json:"title"`
	Units []Unit `json:"units"`
}

type Course struct {
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Chapters []Chapter `json:"chapters"`
}

var courseSlugRegex = regexp.MustCompile(`/course/([^/?#]+)`)

// ParseCourseSlug accepts a full course URL or a bare slug.
func ParseCourseSlug(link string) (string, error) {
	link = strings.TrimSpace(link)
	if matches := courseSlugRegex.FindStringSubmatch(link); len(matches) == 2 {
		return matches[1], nil
	}
	if link != "" && !strings.Contains(link, "/") && !strings.Contains(link, ":") {
		return link, nil
	}
	return "", fmt.Errorf("could not extract course slug from %q", link)
}

type Client struct {
	http    utils.HTTPDoer
	baseURL string
}

func NewClient(client utils.HTTPDoer, baseURL string) *Client {
	if baseURL == "" {
		baseURL = auth.DefaultBaseURL
	}
	return &Client{http: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// GetChapters fetches the course outline from the internal JSON API.
func (c *Client) GetChapters(slug string) (*Course, error) {
	apiURL := fmt.Sprintf("%s/api/v1/courses/%s/chapters/", c.baseURL, slug)
	req, err := http.NewRequest("GET", apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making API request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chapters API request failed with status code: %d", resp.StatusCode)
	}
	var course Course
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		return nil, fmt.Errorf("error decoding chapters response: %w", err)
	}
	if course.Slug == "" {
		course.Slug = slug
	}
	return &course, nil
}

// UnitURL is the lecture page address for a unit within a course.
func (c *Client) UnitURL(courseSlug string, unit Unit) string {
	return fmt.Sprintf("%s/course/%s/%s/", c.baseURL, courseSlug, unit.Slug)
}
