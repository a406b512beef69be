package probers

import (
	"bytes"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/phishfinder/internal/models"
)

// parentDirectoryText Apache/nginx目录列表中返回上级目录的锚点文本
const parentDirectoryText = "Parent Directory"

// FilterLinks 从目录列表页面中筛选制品链接
// 返回的序列是惰性的,可以重复遍历
func FilterLinks(listingHTML []byte, baseURL string) (iter.Seq[models.ArtifactLink], error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("无效的目录URL [%s]: %w", baseURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(listingHTML))
	if err != nil {
		return nil, fmt.Errorf("解析目录列表失败 [%s]: %w", baseURL, err)
	}
	anchors := doc.Find("a")

	return func(yield func(models.ArtifactLink) bool) {
		for i := range anchors.Length() {
			link, ok := artifactFromAnchor(anchors.Eq(i), base)
			if !ok {
				continue
			}
			if !yield(link) {
				return
			}
		}
	}, nil
}

// artifactFromAnchor 解析单个锚点
func artifactFromAnchor(a *goquery.Selection, base *url.URL) (models.ArtifactLink, bool) {
	text := a.Text()
	if strings.Contains(text, parentDirectoryText) {
		return models.ArtifactLink{}, false
	}

	href := strings.TrimSpace(a.AttrOr("href", ""))
	// "?C=N;O=D" 之类是排序链接
	if href == "" || strings.HasPrefix(href, "?") {
		return models.ArtifactLink{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return models.ArtifactLink{}, false
	}
	abs := base.ResolveReference(ref).String()

	kind, ok := models.ClassifyArtifact(abs)
	if !ok {
		return models.ArtifactLink{}, false
	}

	return models.ArtifactLink{
		Kind: kind,
		URL:  abs,
		Text: strings.TrimSpace(text),
	}, true
}
