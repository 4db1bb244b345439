package maktabhttp

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/maktabdl/maktabdl/internal/utils"
)

// RemoteInfo describes a content URL for one download attempt.
type RemoteInfo struct {
	Size           int64 // -1 when the server omits a length
	SupportsRanges bool
}

// ProbeRemote negotiates size and range support. It starts with a HEAD
// request and falls back to a single-byte ranged GET when HEAD fails or
// says nothing about ranges.
func ProbeRemote(link, referer string, client utils.HTTPDoer) (RemoteInfo, error) {
	req, err := http.NewRequest("HEAD", link, nil)
	if err != nil {
		return RemoteInfo{Size: -1}, err
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	resp, err := client.Do(req)
	if err == nil {
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			size := parseContentLength(resp.Header.Get("Content-Length"))
			switch resp.Header.Get("Accept-Ranges") {
			case "bytes":
				return RemoteInfo{Size: size, SupportsRanges: true}, nil
			case "none":
				return RemoteInfo{Size: size, SupportsRanges: false}, nil
			}
			// No Accept-Ranges header; the GET probe below decides.
		}
	}
	return probeWithRangedGet(link, referer, client)
}

func probeWithRangedGet(link, referer string, client utils.HTTPDoer) (RemoteInfo, error) {
	req, err := http.NewRequest("GET", link, nil)
	if err != nil {
		return RemoteInfo{Size: -1}, err
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := client.Do(req)
	if err != nil {
		return RemoteInfo{Size: -1}, fmt.Errorf("error probing URL: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode == http.StatusPartialContent:
		return RemoteInfo{Size: parseContentRangeTotal(resp.Header.Get("Content-Range")), SupportsRanges: true}, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return RemoteInfo{Size: parseContentLength(resp.Header.Get("Content-Length")), SupportsRanges: false}, nil
	}
	return RemoteInfo{Size: -1}, fmt.Errorf("probe failed with status code: %d", resp.StatusCode)
}

func parseContentLength(value string) int64 {
	if value == "" {
		return -1
	}
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size < 0 {
		return -1
	}
	return size
}

// parseContentRangeTotal extracts TOTAL from "bytes A-B/TOTAL".
func parseContentRangeTotal(value string) int64 {
	idx := strings.LastIndex(value, "/")
	if idx < 0 {
		return -1
	}
	total, err := strconv.ParseInt(value[idx+1:], 10, 64)
	if err != nil || total < 0 {
		return -1
	}
	return total
}
