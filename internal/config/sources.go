package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// FromEnviron converts os.Environ()-style "KEY=VALUE" entries into a mapping.
// Entries without '=' are ignored.
func FromEnviron(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// ReadDotEnv parses a .env file. A missing file yields an empty mapping unless
// required is set.
func ReadDotEnv(path string, required bool) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	p, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	if !fileExists(p) {
		if required {
			return nil, fmt.Errorf("env file not found: %s", p)
		}
		return map[string]string{}, nil
	}
	vals, err := godotenv.Read(p)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", p, err)
	}
	return vals, nil
}

// Merge flattens layers into one mapping; keys in later layers win.
func Merge(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Sources describes where raw settings come from.
type Sources struct {
	// ConfigFile is an optional YAML/JSON/TOML file.
	ConfigFile string
	// EnvFile is a .env file. Missing is fine unless EnvFileRequired is set.
	EnvFile         string
	EnvFileRequired bool
	// Environ is the process environment, usually os.Environ().
	Environ []string
}

// Gather reads every source and merges them with precedence
// config file < .env < process environment.
func Gather(src Sources) (map[string]string, error) {
	var file map[string]string
	if src.ConfigFile != "" {
		m, err := Load(src.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", src.ConfigFile, err)
		}
		file = m
	}
	dotenv, err := ReadDotEnv(src.EnvFile, src.EnvFileRequired)
	if err != nil {
		return nil, err
	}
	return Merge(file, dotenv, FromEnviron(src.Environ)), nil
}
