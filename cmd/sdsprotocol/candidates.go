package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// dictPrefix marks an argument naming a JSON file whose object is passed as a dict candidate.
const dictPrefix = "@"

// ParseCandidates turns command line arguments into ordered match candidates. Plain
// arguments are paths; "@file.json" is replaced by the JSON object stored in file.json.
func ParseCandidates(args []string) ([]any, error) {
	candidates := make([]any, 0, len(args))

	for _, arg := range args {
		if !strings.HasPrefix(arg, dictPrefix) {
			candidates = append(candidates, arg)

			continue
		}

		dict, err := readDict(strings.TrimPrefix(arg, dictPrefix))
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, dict)
	}

	return candidates, nil
}

func readDict(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dict candidate %s: %w", path, err)
	}

	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("dict candidate %s is not a JSON object: %w", path, err)
	}

	if dict == nil {
		return nil, fmt.Errorf("dict candidate %s is not a JSON object", path)
	}

	return dict, nil
}
