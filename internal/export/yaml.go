package export

import (
	"io"

	"github.com/Vishnu1805/taskdeck/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports tasks in YAML format
type YAMLExporter struct{}

// Export exports the task list to YAML format
func (e *YAMLExporter) Export(tasks []*internal.Task, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(tasks)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
