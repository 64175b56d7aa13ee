package cfg

import "time"

type Cfg struct {
	// Application configuration
	FeedsDir      string
	Port          string
	FetchTimeout  time.Duration
	ResponseLimit int
	MaxBodyBytes  int64
	CheckWorkers  int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
