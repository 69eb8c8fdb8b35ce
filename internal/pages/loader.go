// Package pages loads paginated document text from disk: either a single
// JSON file or a directory of per-page text files.
package pages

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/apsscout/pagetree/internal/tree"
)

// DefaultMaxFileSize is the maximum page file size to read (4 MB).
const DefaultMaxFileSize int64 = 4 << 20

// LoadOptions controls how pages are discovered and read.
type LoadOptions struct {
	// Glob filters files inside a directory, e.g. "**/*.txt". Empty
	// matches every .txt file.
	Glob string
	// MaxFileSize skips files larger than this (0 = use default).
	MaxFileSize int64
}

// Load reads pages from path. A .json file is parsed as a page array; a
// directory is scanned for per-page text files ordered by the numeric
// suffix in their names (page_2 sorts before page_10).
func Load(path string, opts LoadOptions) ([]tree.PageContent, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pages: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return loadDir(path, opts)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadJSON(path)
	}
	return nil, fmt.Errorf("pages: %s is neither a directory nor a .json file", path)
}

// jsonPage accepts both bare strings and {"page_number":…,"text":…} objects.
type jsonPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

func (p *jsonPage) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		return nil
	}
	type alias jsonPage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = jsonPage(a)
	return nil
}

func loadJSON(path string) ([]tree.PageContent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pages: reading %s: %w", path, err)
	}

	var raw []jsonPage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Also accept {"pages": [...]} wrappers.
		var wrapper struct {
			Pages []jsonPage `json:"pages"`
		}
		if err2 := json.Unmarshal(data, &wrapper); err2 != nil || len(wrapper.Pages) == 0 {
			return nil, fmt.Errorf("pages: parsing %s: %w", path, err)
		}
		raw = wrapper.Pages
	}

	pages := make([]tree.PageContent, len(raw))
	for i, p := range raw {
		num := p.PageNumber
		if num == 0 {
			num = i + 1
		}
		pages[i] = tree.PageContent{PageNumber: num, Text: p.Text}
	}
	return pages, nil
}

func loadDir(dir string, opts LoadOptions) ([]tree.PageContent, error) {
	pattern := opts.Glob
	if pattern == "" {
		pattern = "**/*.txt"
	}
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if ok, err := doublestar.PathMatch(pattern, filepath.ToSlash(rel)); err != nil || !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > maxSize {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pages: walking %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("pages: no files in %s match %q", dir, pattern)
	}

	sort.Slice(paths, func(i, j int) bool {
		return naturalLess(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})

	pages := make([]tree.PageContent, 0, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("pages: reading %s: %w", p, err)
		}
		pages = append(pages, tree.PageContent{PageNumber: i + 1, Text: string(data)})
	}
	return pages, nil
}

// ContentHash returns a short hex digest over all page text, usable as a
// stable default document id.
func ContentHash(pages []tree.PageContent) string {
	h := sha256.New()
	for _, p := range pages {
		h.Write([]byte(p.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var numberRun = regexp.MustCompile(`\d+|\D+`)

// naturalLess orders embedded number runs numerically, so page_2.txt sorts
// before page_10.txt.
func naturalLess(a, b string) bool {
	aParts := numberRun.FindAllString(a, -1)
	bParts := numberRun.FindAllString(b, -1)
	for i := 0; i < len(aParts) && i < len(bParts); i++ {
		ap, bp := aParts[i], bParts[i]
		if ap == bp {
			continue
		}
		an, aErr := strconv.Atoi(ap)
		bn, bErr := strconv.Atoi(bp)
		if aErr == nil && bErr == nil {
			return an < bn
		}
		return ap < bp
	}
	return len(aParts) < len(bParts)
}
