package snapshot

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ManifestFile = "manifest.yaml"
	ChunksFile   = "chunks.json"
	VectorsFile  = "vectors.gob"

	MetricL2 = "l2"
)

// Manifest describes a snapshot produced by the indexer
type Manifest struct {
	BuildID   string    `yaml:"build_id"`
	Model     string    `yaml:"model"`
	Dimension int       `yaml:"dimension"`
	Count     int       `yaml:"count"`
	Metric    string    `yaml:"metric"`
	CreatedAt time.Time `yaml:"created_at"`
}

func readManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

func writeManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
