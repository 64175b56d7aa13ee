package source

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/product-feeds/app/feed"
)

type Loader struct {
	feedsDir string
}

func NewLoader(feedsDir string) *Loader {
	return &Loader{feedsDir: feedsDir}
}

// Run loads every *.yml and *.yaml file in the feeds directory into a
// Catalog. A missing directory yields an empty catalog.
func (l *Loader) Run() (*Catalog, error) {
	if _, err := os.Stat(l.feedsDir); os.IsNotExist(err) {
		slog.Warn("Feeds directory not found", "dir", l.feedsDir)
		return NewCatalog()
	}

	var files []string
	for _, pattern := range []string{"*.yml", "*.yaml"} {
		matches, err := filepath.Glob(filepath.Join(l.feedsDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to find %s files: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	sources := make([]*Source, 0, len(files))
	for _, file := range files {
		src, err := l.LoadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source loaded", "source", src.ID, "enabled", src.Enabled, "format", src.Format)
		sources = append(sources, src)
	}

	return NewCatalog(sources...)
}

// LoadFile parses and validates one source file; the id is the file name
// without extension.
func (l *Loader) LoadFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Base(path)
	src.ID = strings.TrimSuffix(base, filepath.Ext(base))
	if src.Name == "" {
		src.Name = src.ID
	}

	if err := validate(&src); err != nil {
		return nil, fmt.Errorf("invalid source %s: %w", src.ID, err)
	}

	return &src, nil
}

func validate(src *Source) error {
	if src.ID == "" {
		return fmt.Errorf("source id is required")
	}

	if src.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	u, err := url.Parse(src.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("source URL must be an absolute http(s) URL: %s", src.URL)
	}

	if _, err := feed.ParseFormat(src.Format); err != nil {
		return err
	}

	if src.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if len([]rune(src.Delimiter)) > 1 && src.Delimiter != `\t` {
		return fmt.Errorf("delimiter must be a single character: %q", src.Delimiter)
	}

	return nil
}
