// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TopicsFile is the on-disk list of topics for a batch run. A per-topic model
// overrides the file-level model, which in turn overrides the pipeline
// default.
type TopicsFile struct {
	Model  string  `yaml:"model,omitempty"`
	Topics []Topic `yaml:"topics"`
}

// Topic is one report to generate.
type Topic struct {
	Topic string `yaml:"topic"`
	Model string `yaml:"model,omitempty"`
}

// LoadTopics reads a topics file and resolves each topic's model. Blank
// topics are rejected.
func LoadTopics(path string) ([]Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topics file: %w", err)
	}
	var tf TopicsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing topics file: %w", err)
	}
	if len(tf.Topics) == 0 {
		return nil, fmt.Errorf("topics file %s lists no topics", path)
	}

	topics := make([]Topic, 0, len(tf.Topics))
	for i, t := range tf.Topics {
		t.Topic = strings.TrimSpace(t.Topic)
		if t.Topic == "" {
			return nil, fmt.Errorf("topic %d in %s is empty", i+1, path)
		}
		if t.Model == "" {
			t.Model = tf.Model
		}
		topics = append(topics, t)
	}
	return topics, nil
}
