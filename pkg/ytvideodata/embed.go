package ytvideodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ytparty/server/pkg/party"
)

type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailUrl string `json:"thumbnail_url"`
}

func (f *Fetcher) fetchWithEmbed(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	q := url.Values{}
	q.Set("url", "https://www.youtube.com/watch?v="+videoId)
	q.Set("format", "json")

	resp, err := f.get(ctx, f.oembedURL+"?"+q.Encode())
	if err != nil {
		return party.VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound:
			return party.VideoMetadata{}, ErrVideoNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return party.VideoMetadata{}, ErrVideoNotEmbeddable
		default:
			return party.VideoMetadata{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
	}

	var result oembedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return party.VideoMetadata{}, fmt.Errorf("failed to decode oembed response: %w", err)
	}

	return party.VideoMetadata{
		Id:        videoId,
		Title:     result.Title,
		Author:    result.AuthorName,
		Thumbnail: result.ThumbnailUrl,
	}, nil
}
