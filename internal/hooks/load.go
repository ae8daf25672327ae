package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// RuleFile decodes either a bare list of rules or a wrapper object keyed
// "rule" or "rules".
type RuleFile struct {
	Rules []Rule
}

// UnmarshalYAML accepts a bare sequence or a mapping with a "rule"/"rules"
// key holding that sequence.
func (f *RuleFile) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var rules []Rule
		if err := value.Decode(&rules); err != nil {
			return err
		}
		f.Rules = rules
		return nil
	case yaml.MappingNode:
		var wrapper struct {
			Rule  []Rule `yaml:"rule"`
			Rules []Rule `yaml:"rules"`
		}
		if err := value.Decode(&wrapper); err != nil {
			return err
		}
		if len(wrapper.Rules) > 0 {
			f.Rules = wrapper.Rules
		} else {
			f.Rules = wrapper.Rule
		}
		return nil
	default:
		return fmt.Errorf("hook rule file: unsupported top-level YAML node kind %v", value.Kind)
	}
}

var recognizedRuleExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// LoadDirs parses every recognized-extension file in each directory (in the
// order given), lexicographically within a directory, and returns the
// union of all rule lists in that order. A parse error for any single file
// is returned immediately and is fatal to registry construction.
func LoadDirs(dirs []string) ([]Rule, error) {
	var all []Rule
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read hook rule dir %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if recognizedRuleExtensions[filepath.Ext(e.Name())] {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			path := filepath.Join(dir, name)
			rules, err := LoadFile(path)
			if err != nil {
				return nil, fmt.Errorf("parse hook rule file %s: %w", path, err)
			}
			all = append(all, rules...)
		}
	}
	return all, nil
}

// LoadFile parses a single hook rule file.
func LoadFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file RuleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	return file.Rules, nil
}
