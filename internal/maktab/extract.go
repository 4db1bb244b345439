package maktab

import (
	"html"
	"regexp"
)

// Lecture pages embed media as plain tags; regex extraction matches how the
// platform renders them today. High-quality sources are listed before
// low-quality ones, so the first <source> wins.
var (
	videoSourceRegex = regexp.MustCompile(`<source[^>]+src=["']([^"']+)["']`)
	subtitleRegex    = regexp.MustCompile(`<track[^>]+src=["']([^"']+)["']`)
	attachmentRegex  = regexp.MustCompile(`href=["']([^"']*/(?:attachments|materials)/[^"']+)["']`)
)

// ExtractMedia scans lecture page HTML for the video source, subtitle
// tracks, and attachment links.
func ExtractMedia(page string) []Media {
	var media []Media
	seen := make(map[string]bool)
	add := func(raw, kind string) {
		link := html.UnescapeString(raw)
		if link == "" || seen[link] {
			return
		}
		seen[link] = true
		media = append(media, Media{URL: link, Kind: kind})
	}
	if matches := videoSourceRegex.FindStringSubmatch(page); len(matches) == 2 {
		add(matches[1], "video")
	}
	for _, matches := range subtitleRegex.FindAllStringSubmatch(page, -1) {
		add(matches[1], "subtitle")
	}
	for _, matches := range attachmentRegex.FindAllStringSubmatch(page, -1) {
		add(matches[1], "attachment")
	}
	return media
}
