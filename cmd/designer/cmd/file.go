package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RealZimboGuy/gopherflow-designer/pkg/designer/domain"
)

// loadWorkflow reads a YAML or JSON workflow file. JSON is valid YAML, so
// one decoder serves both.
func loadWorkflow(path string) (domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("reading workflow file: %w", err)
	}
	var w domain.Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return domain.Workflow{}, fmt.Errorf("parsing workflow file %s: %w", path, err)
	}
	w.Normalize()
	if err := domain.CheckShape(w); err != nil {
		return domain.Workflow{}, fmt.Errorf("workflow file %s: %w", path, err)
	}
	return w, nil
}

func writeWorkflow(out io.Writer, w domain.Workflow, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(w); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(w)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", format)
	}
}
