package core

import (
	"fmt"
	"maps"

	"dario.cat/mergo"
)

func DefaultBuilderConfig(outputDir string) map[string]any {
	return map[string]any{
		"directories": map[string]any{
			"output": outputDir,
		},
		"files": []any{
			outputDir + "/" + BundledDir + "/**/*",
			"node_modules/**/*",
			"package.json",
		},
		"extends": nil,
	}
}

// MergeBuilderConfig deep-merges user on top of defaults. Nested maps are
// merged key by key and lists position by position, so a shorter user list
// keeps the trailing defaults. Scalars from user replace the default.
func MergeBuilderConfig(defaults, user map[string]any) (map[string]any, error) {
	merged := defaults
	if merged == nil {
		merged = map[string]any{}
	}
	if len(user) == 0 {
		return merged, nil
	}
	aligned, err := alignLists(merged, user)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(&merged, aligned, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("failed to merge builder options: %w", err)
	}
	return merged, nil
}

// alignLists copies user, replacing every list that has a default list at the
// same path with the two merged element-wise. mergo then only has maps left
// to merge.
func alignLists(defaults, user map[string]any) (map[string]any, error) {
	aligned := make(map[string]any, len(user))
	for key, value := range user {
		v, err := alignValue(defaults[key], value)
		if err != nil {
			return nil, err
		}
		aligned[key] = v
	}
	return aligned, nil
}

func alignValue(def, value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		if d, ok := def.(map[string]any); ok {
			return alignLists(d, v)
		}
	case []any:
		if d, ok := def.([]any); ok {
			return mergeLists(d, v)
		}
	}
	return value, nil
}

func mergeLists(defaults, user []any) ([]any, error) {
	merged := make([]any, max(len(defaults), len(user)))
	copy(merged, defaults)

	for i, value := range user {
		if i >= len(defaults) {
			merged[i] = value
			continue
		}
		dm, dok := defaults[i].(map[string]any)
		um, uok := value.(map[string]any)
		if dok && uok {
			item, err := MergeBuilderConfig(maps.Clone(dm), um)
			if err != nil {
				return nil, err
			}
			merged[i] = item
			continue
		}
		v, err := alignValue(defaults[i], value)
		if err != nil {
			return nil, err
		}
		merged[i] = v
	}
	return merged, nil
}
