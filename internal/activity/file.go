package activity

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads an activity export bundle from a JSON file and wraps it as
// a Source. A missing file is an error here, unlike optional config files:
// the CLI cannot compute anything without activity data.
func LoadFile(path string) (*BundleSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading activity export: %w", err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing activity export %s: %w", path, err)
	}
	if b.ProjectID == "" {
		return nil, fmt.Errorf("activity export %s has no project_id", path)
	}

	return NewBundleSource(b), nil
}
