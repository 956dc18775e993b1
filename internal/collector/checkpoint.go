package collector

import (
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ArrayCheckpoint records the last successful collection of one array.
type ArrayCheckpoint struct {
	CollectedAt time.Time `yaml:"collected_at"`
	ReportFile  string    `yaml:"report_file"`
}

// Checkpoint is the YAML-backed map of array id to last successful
// collection. It is informational: every IO failure is a warning and
// never blocks a collection run.
type Checkpoint struct {
	path string

	Arrays map[string]ArrayCheckpoint `yaml:"arrays"`
}

// LoadCheckpoint reads the checkpoint at path, returning an empty one
// when the file is missing or unreadable.
func LoadCheckpoint(path string) *Checkpoint {
	cp := &Checkpoint{
		path:   path,
		Arrays: make(map[string]ArrayCheckpoint),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read collection checkpoint, starting empty")
		}
		return cp
	}

	if err := yaml.Unmarshal(data, cp); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to parse collection checkpoint, starting empty")
		cp.Arrays = make(map[string]ArrayCheckpoint)
		return cp
	}
	if cp.Arrays == nil {
		cp.Arrays = make(map[string]ArrayCheckpoint)
	}

	log.Debug().
		Str("path", path).
		Int("arrays", len(cp.Arrays)).
		Msg("Collection checkpoint loaded")
	return cp
}

// Update records a successful collection and saves the checkpoint.
func (c *Checkpoint) Update(arrayID, reportFile string, collectedAt time.Time) {
	c.Arrays[arrayID] = ArrayCheckpoint{
		CollectedAt: collectedAt,
		ReportFile:  reportFile,
	}
	if err := c.save(); err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("Failed to update collection checkpoint")
	}
}

func (c *Checkpoint) save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0644)
}
