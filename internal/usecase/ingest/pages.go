package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/futig/virtual-ta/internal/entity"
)

// LoadCoursePages reads every *.md file in dir. The page URL is baseURL followed
// by the file name without extension, matching the course site routing.
func LoadCoursePages(dir, baseURL string) ([]entity.CoursePage, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("list course pages: %w", err)
	}
	sort.Strings(paths)

	pages := make([]entity.CoursePage, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read course page %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		markdown := string(data)
		pages = append(pages, entity.CoursePage{
			Name:     name,
			Title:    pageTitle(markdown, name),
			URL:      baseURL + name,
			Markdown: markdown,
		})
	}
	return pages, nil
}

// pageTitle is the first level-one heading, or the file name
func pageTitle(markdown, fallback string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}
