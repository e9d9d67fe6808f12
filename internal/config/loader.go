package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads a configuration file based on its extension and flattens it into
// environment-style keys (e.g. max_new_tokens -> MAX_NEW_TOKENS).
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (map[string]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty config path")
	}
	p, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	doc := map[string]any{}
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &doc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(k), "-", "_"))
		if key == "" || v == nil {
			continue
		}
		out[key] = scalarString(v)
	}
	return out, nil
}

// scalarString renders a decoded config value the way it would appear in an
// environment variable. Lists become comma-separated strings.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, scalarString(e))
		}
		return strings.Join(parts, ",")
	case map[string]any:
		// nested tables are not part of the flat key space; keep a stable rendering
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+scalarString(t[k]))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
