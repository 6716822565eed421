package sources

import (
	"fmt"
	"os"

	"articlebench/internal/bench"

	"gopkg.in/yaml.v3"
)

// PlanFile is the YAML form of a benchmark plan. A feed or a Telegram
// channel may stand in for, or add to, the URL list.
type PlanFile struct {
	bench.Plan `yaml:",inline"`

	Feed      string `yaml:"feed"`
	Channel   string `yaml:"channel"`
	FeedLimit int    `yaml:"feed_limit"`
	Schedule  string `yaml:"schedule"`
}

func LoadPlan(path string) (PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PlanFile{}, fmt.Errorf("read plan: %w", err)
	}

	var plan PlanFile
	if err = yaml.Unmarshal(data, &plan); err != nil {
		return PlanFile{}, fmt.Errorf("parse plan %s: %w", path, err)
	}

	return plan, nil
}
