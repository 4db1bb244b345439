package utils

// DownloadTask is one unit of work for the download engine: a source URL
// and where its bytes end up. SampleLimit > 0 truncates the transfer to a
// fixed byte count (preview mode); 0 means the full file.
type DownloadTask struct {
	ID           string
	URL          string
	OutputPath   string
	Referer      string
	Label        string
	MaxAttempts  int
	SampleLimit  int64
	ProgressFunc func(downloaded, total int64)
}

// CourseEntry is one item of a batch YAML file.
type CourseEntry struct {
	OutputDir string `yaml:"dir,omitempty"`
	Link      string `yaml:"link"`
}

const DefaultBufferSize = 1024 * 1024 // 1MB streaming buffer
const PartSuffix = ".part"
const DefaultMaxAttempts = 5

// Exit codes, distinct so scripts can tell failure causes apart.
const (
	ExitFailure    = 1
	ExitNoSession  = 2
	ExitNoChapters = 3
	ExitNoLinks    = 4
)

// Local-only User-Agent list
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36 Edg/132.0.0.0",
}
