package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// GetValue resolves a dot-notation key (e.g. "providers.ollama.model")
// against the configuration.
func (c *Config) GetValue(key string) (any, error) {
	tree, err := c.toTree()
	if err != nil {
		return nil, err
	}

	node := any(tree)
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		node, ok = m[part]
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
	}
	return node, nil
}

// SetValue sets a dot-notation key to a string value, coercing booleans and
// numbers where the YAML schema expects them. Unknown keys are rejected.
func (c *Config) SetValue(key, value string) error {
	tree, err := c.toTree()
	if err != nil {
		return err
	}

	parts := strings.Split(key, ".")
	node := tree
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	if _, ok := node[leaf]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	node[leaf] = coerceScalar(value)

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("failed to re-encode config: %w", err)
	}
	updated, err := ParseYAML(data)
	if err != nil {
		return err
	}
	*c = *updated
	return nil
}

// toTree converts the typed config into a generic YAML map for key traversal.
func (c *Config) toTree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return tree, nil
}

// coerceScalar turns a command-line string into the YAML scalar it reads
// as. Numbers are tried before booleans so "1" stays an int.
func coerceScalar(value string) any {
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
