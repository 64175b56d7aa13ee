package source

import (
	"time"

	"github.com/lysyi3m/product-feeds/app/feed"
)

// Source describes one partner catalog. ID is derived from the file name.
type Source struct {
	ID            string   `yaml:"-"`
	Name          string   `yaml:"name"`
	URL           string   `yaml:"url"`
	Format        string   `yaml:"format"`
	Enabled       bool     `yaml:"enabled"`
	Timeout       int      `yaml:"timeout"` // seconds
	Delimiter     string   `yaml:"delimiter"`
	ImageDenylist []string `yaml:"image_denylist"`
}

// Summary is the selector-facing view of a source.
type Summary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func (s *Source) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name, Enabled: s.Enabled}
}

// FeedFormat returns the declared format, "" when it must be inferred.
// Formats are validated at load time.
func (s *Source) FeedFormat() feed.Format {
	format, _ := feed.ParseFormat(s.Format)
	return format
}

func (s *Source) GetTimeout(fallback time.Duration) time.Duration {
	if s.Timeout <= 0 {
		return fallback
	}
	return time.Duration(s.Timeout) * time.Second
}

func (s *Source) ParseOptions() feed.Options {
	var delimiter rune
	if s.Delimiter != "" {
		delimiter = []rune(s.Delimiter)[0]
		if s.Delimiter == `\t` {
			delimiter = '\t'
		}
	}
	return feed.Options{
		SourceName:    s.Name,
		Delimiter:     delimiter,
		ImageDenylist: s.ImageDenylist,
	}
}
