package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// PresetFile is a TOML file of named canonical orders:
//
//	[presets.my-elements]
//	description = "house style"
//	order = ["is", "behaviors", "properties", "ready"]
type PresetFile struct {
	Presets map[string]PresetDef `toml:"presets"`
}

// PresetDef is one named order.
type PresetDef struct {
	Description string   `toml:"description"`
	Order       []string `toml:"order"`
}

// LoadPresetFile decodes a preset file. Unknown keys are rejected so typos
// such as `ordr` do not silently fall back to an empty order.
func LoadPresetFile(path string) (*PresetFile, error) {
	var pf PresetFile
	md, err := toml.DecodeFile(path, &pf)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("preset file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	for name, def := range pf.Presets {
		if len(def.Order) == 0 {
			return nil, fmt.Errorf("preset file %s: preset %q has no order", path, name)
		}
	}
	return &pf, nil
}

// Names returns the preset names in sorted order.
func (pf *PresetFile) Names() []string {
	names := make([]string, 0, len(pf.Presets))
	for name := range pf.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
