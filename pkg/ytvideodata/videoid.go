package ytvideodata

import (
	"net/url"
	"regexp"
	"strings"
)

var videoIdRegexp = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

func IsValidVideoId(videoId string) bool {
	return videoIdRegexp.MatchString(videoId)
}

// ParseVideoId extracts a video id from a bare id, a youtube.com/watch link
// or a youtu.be link.
func ParseVideoId(s string) (string, error) {
	s = strings.TrimSpace(s)
	if IsValidVideoId(s) {
		return s, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", ErrInvalidVideoId
	}

	var videoId string
	switch u.Hostname() {
	case "www.youtube.com", "youtube.com", "m.youtube.com":
		if u.Path != "/watch" {
			return "", ErrInvalidVideoId
		}
		videoId = u.Query().Get("v")
	case "youtu.be":
		videoId = strings.TrimPrefix(u.Path, "/")
	default:
		return "", ErrInvalidVideoId
	}

	if !IsValidVideoId(videoId) {
		return "", ErrInvalidVideoId
	}

	return videoId, nil
}
