package ytvideodata

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ytparty/server/pkg/party"
)

type MetadataFetcher interface {
	Fetch(ctx context.Context, videoId string) (party.VideoMetadata, error)
}

// CachingFetcher keeps successful lookups for ttl. Failures are not cached.
type CachingFetcher struct {
	base  MetadataFetcher
	cache *expirable.LRU[string, party.VideoMetadata]
}

func NewCachingFetcher(base MetadataFetcher, size int, ttl time.Duration) *CachingFetcher {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CachingFetcher{
		base:  base,
		cache: expirable.NewLRU[string, party.VideoMetadata](size, nil, ttl),
	}
}

func (c *CachingFetcher) Fetch(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	if metadata, ok := c.cache.Get(videoId); ok {
		return metadata, nil
	}

	metadata, err := c.base.Fetch(ctx, videoId)
	if err != nil {
		return party.VideoMetadata{}, err
	}

	c.cache.Add(videoId, metadata)

	return metadata, nil
}
