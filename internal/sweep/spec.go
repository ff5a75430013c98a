// Package sweep loads a benchmark sweep specification from an HCL file
// and expands it into the trial configurations to run.
package sweep

import (
	"fmt"

	"github.com/hxl1990/scanner/internal/trial"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Sweep is one named parameter grid. Each trial takes one value from
// every list; scalar parameters are shared by every trial.
type Sweep struct {
	Name string `hcl:"name,label"`

	VideoManifest      string `hcl:"video_manifest"`
	Nodes              []int  `hcl:"nodes"`
	GPUsPerNode        []int  `hcl:"gpus_per_node"`
	BatchSizes         []int  `hcl:"batch_sizes"`
	LoadWorkersPerNode []int  `hcl:"load_workers_per_node"`
	BatchesPerWorkItem int    `hcl:"batches_per_work_item"`
	TasksInQueuePerGPU int    `hcl:"tasks_in_queue_per_gpu"`
}

// Spec is a parsed sweep file, immutable once loaded.
type Spec struct {
	Sweeps []Sweep `hcl:"sweep,block"`
}

// Load parses and validates a sweep specification file.
func Load(path string) (*Spec, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse sweep file %s: %w", path, diags)
	}
	var spec Spec
	if diags := gohcl.DecodeBody(file.Body, nil, &spec); diags.HasErrors() {
		return nil, fmt.Errorf("decode sweep file %s: %w", path, diags)
	}
	if len(spec.Sweeps) == 0 {
		return nil, fmt.Errorf("sweep file %s declares no sweep blocks", path)
	}
	for _, s := range spec.Sweeps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("sweep %q: %w", s.Name, err)
		}
	}
	return &spec, nil
}

func (s Sweep) validate() error {
	if s.VideoManifest == "" {
		return fmt.Errorf("video_manifest is required")
	}
	lists := []struct {
		name   string
		values []int
	}{
		{"nodes", s.Nodes},
		{"gpus_per_node", s.GPUsPerNode},
		{"batch_sizes", s.BatchSizes},
		{"load_workers_per_node", s.LoadWorkersPerNode},
	}
	for _, l := range lists {
		if len(l.values) == 0 {
			return fmt.Errorf("%s must list at least one value", l.name)
		}
		for _, v := range l.values {
			if v <= 0 {
				return fmt.Errorf("%s contains non-positive value %d", l.name, v)
			}
		}
	}
	if s.BatchesPerWorkItem <= 0 {
		return fmt.Errorf("batches_per_work_item must be > 0, got %d", s.BatchesPerWorkItem)
	}
	if s.TasksInQueuePerGPU <= 0 {
		return fmt.Errorf("tasks_in_queue_per_gpu must be > 0, got %d", s.TasksInQueuePerGPU)
	}
	return nil
}

// Configs expands the grid into the cross product of its parameter
// lists, nodes outermost and load workers innermost.
func (s Sweep) Configs() []trial.Config {
	configs := make([]trial.Config, 0, len(s.Nodes)*len(s.GPUsPerNode)*len(s.BatchSizes)*len(s.LoadWorkersPerNode))
	for _, nodes := range s.Nodes {
		for _, gpus := range s.GPUsPerNode {
			for _, batch := range s.BatchSizes {
				for _, workers := range s.LoadWorkersPerNode {
					configs = append(configs, trial.Config{
						VideoManifest:      s.VideoManifest,
						NodeCount:          nodes,
						GPUsPerNode:        gpus,
						BatchSize:          batch,
						BatchesPerWorkItem: s.BatchesPerWorkItem,
						TasksInQueuePerGPU: s.TasksInQueuePerGPU,
						LoadWorkersPerNode: workers,
					})
				}
			}
		}
	}
	return configs
}
