package ytvideodata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ytparty/server/pkg/party"
	"golang.org/x/net/html"
)

func (f *Fetcher) fetchFromPage(ctx context.Context, videoId string) (party.VideoMetadata, error) {
	resp, err := f.get(ctx, f.watchURL+"?v="+url.QueryEscape(videoId))
	if err != nil {
		return party.VideoMetadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return party.VideoMetadata{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return party.VideoMetadata{}, err
	}

	thumbnail := getMetaContent(doc, "og:image")
	if thumbnail == "" {
		thumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoId)
	}

	return party.VideoMetadata{
		Id:        videoId,
		Title:     getMetaContent(doc, "og:title"),
		Author:    getAuthorName(doc),
		Thumbnail: thumbnail,
	}, nil
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}

	return "", false
}

// getMetaContent returns the content of <meta property="{property}">.
func getMetaContent(n *html.Node, property string) string {
	if n.Type == html.ElementNode && n.Data == "meta" {
		if p, _ := getAttr(n, "property"); p == property {
			content, _ := getAttr(n, "content")
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if content := getMetaContent(c, property); content != "" {
			return content
		}
	}

	return ""
}

// getAuthorName returns the content of <link itemprop="name"> nested in the
// itemprop="author" element.
func getAuthorName(n *html.Node) string {
	if n.Type == html.ElementNode {
		if p, _ := getAttr(n, "itemprop"); p == "author" {
			return getLinkName(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if name := getAuthorName(c); name != "" {
			return name
		}
	}

	return ""
}

func getLinkName(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "link" {
		if p, _ := getAttr(n, "itemprop"); p == "name" {
			content, _ := getAttr(n, "content")
			return content
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if content := getLinkName(c); content != "" {
			return content
		}
	}

	return ""
}
