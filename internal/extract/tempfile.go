package extract

import (
	"fmt"
	"os"
)

type tempDoc struct {
	path string
}

func writeTempDoc(content []byte) (*tempDoc, error) {
	file, err := os.CreateTemp("", "redraft-*.doc")
	if err != nil {
		return nil, fmt.Errorf("create temp doc: %w", err)
	}
	if _, err := file.Write(content); err != nil {
		file.Close()
		os.Remove(file.Name())
		return nil, fmt.Errorf("write temp doc: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return nil, fmt.Errorf("close temp doc: %w", err)
	}
	return &tempDoc{path: file.Name()}, nil
}

func (t *tempDoc) cleanup() {
	if t != nil && t.path != "" {
		_ = os.Remove(t.path)
	}
}
