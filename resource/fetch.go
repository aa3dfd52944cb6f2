package resource

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// ErrNoPreviewImage is returned when a followed HTML page names no image.
var ErrNoPreviewImage = errors.New("resource: page has no preview image")

func (l *Loader) fetch(ctx context.Context, src string, depth int) (image.Image, error) {
	data, err := l.read(ctx, src, depth)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

func (l *Loader) read(ctx context.Context, src string, depth int) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.readRemote(ctx, src, depth)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing file URL: %w", err)
		}
		return os.ReadFile(filepath.FromSlash(u.Path))
	case src == "":
		return nil, errors.New("empty source")
	}
	path := src
	if !filepath.IsAbs(path) && l.baseDir != "" {
		path = filepath.Join(l.baseDir, path)
	}
	return os.ReadFile(path)
}

func (l *Loader) readRemote(ctx context.Context, src string, depth int) ([]byte, error) {
	resp, err := l.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return nil, fmt.Errorf("fetching: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching: unexpected status %s", resp.Status())
	}
	body := resp.Bytes()

	contentType := resp.Header().Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "text/html" || !l.followPages || depth > 0 {
		return body, nil
	}
	next, err := previewImage(body, contentType, src)
	if err != nil {
		return nil, err
	}
	return l.read(ctx, next, depth+1)
}

// previewImage returns the absolute URL of the page's og:image, twitter:image
// or first <img>, in that order of preference.
func previewImage(body []byte, contentType, pageURL string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", fmt.Errorf("creating charset reader: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing HTML document: %w", err)
	}

	var ref string
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[name="twitter:image"]`,
	} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			ref = v
			break
		}
	}
	if ref == "" {
		if v, ok := doc.Find("img[src]").First().Attr("src"); ok {
			ref = v
		}
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrNoPreviewImage
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid image URL %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

// decodeDataURI decodes "data:[<mediatype>][;base64],<data>".
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URI")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop padding.
			if b, err2 := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); err2 == nil {
				return b, nil
			}
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding data URI: %w", err)
	}
	return []byte(s), nil
}
