package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"
)

var snapshotExtensions = []string{".html", ".htm", ".mhtml", ".mht"}

// SnapshotFetcher serves pages saved from a browser. The file name is the last
// path segment of the page URL, e.g. 96th_Academy_Awards.mhtml.
type SnapshotFetcher struct {
	dir string
}

func NewSnapshotFetcher(dir string) *SnapshotFetcher {
	return &SnapshotFetcher{dir: dir}
}

func (f *SnapshotFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, err := snapshotName(pageURL)
	if err != nil {
		return nil, err
	}

	for _, ext := range snapshotExtensions {
		p := filepath.Join(f.dir, name+ext)
		raw, err := os.ReadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ext == ".mhtml" || ext == ".mht" {
			return htmlFromMHTML(raw)
		}
		return raw, nil
	}
	return nil, fmt.Errorf("snapshot %s in %s: %w", name, f.dir, ErrNotFound)
}

func snapshotName(pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("no page name in %q", pageURL)
	}
	return name, nil
}

// htmlFromMHTML returns the HTML root part of a MIME-encapsulated page.
func htmlFromMHTML(raw []byte) ([]byte, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read mhtml: %w", err)
	}
	if strings.TrimSpace(env.HTML) != "" {
		return []byte(env.HTML), nil
	}
	for _, part := range append(env.Inlines, env.OtherParts...) {
		if strings.HasPrefix(part.ContentType, "text/html") {
			return part.Content, nil
		}
	}
	return nil, errors.New("mhtml has no html part")
}

// ReadPageFile loads a saved page from disk, unwrapping MHTML archives.
func ReadPageFile(p string) ([]byte, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".mhtml", ".mht":
		return htmlFromMHTML(raw)
	default:
		return raw, nil
	}
}
