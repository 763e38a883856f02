package env

import (
	"os"
	"sort"
	"strings"

	"github.com/3-lines-studio/spark/internal/core"
)

const (
	IsElectron     = "IS_ELECTRON"
	RendererConfig = "SPARK_RENDERER_CONFIG"
)

// ForTarget returns the variables a host build child needs for target.
// They are never set on the current process.
func ForTarget(target core.BuildTarget) map[string]string {
	if target == core.TargetElectron {
		return map[string]string{IsElectron: "true"}
	}
	return map[string]string{}
}

// Child returns os.Environ() with extra layered on top.
func Child(extra ...map[string]string) []string {
	return Merge(os.Environ(), extra...)
}

func Merge(base []string, extra ...map[string]string) []string {
	overrides := map[string]string{}
	for _, m := range extra {
		for k, v := range m {
			overrides[k] = v
		}
	}

	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+overrides[k])
	}
	return out
}
