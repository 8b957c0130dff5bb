package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"polylint/internal/config"
)

func TestValueOrDefault(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue string
		want         string
	}{
		{"empty value uses default", "", "default", "default"},
		{"non-empty value used", "custom", "default", "custom"},
		{"empty default with empty value", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := valueOrDefault(tt.value, tt.defaultValue)
			if got != tt.want {
				t.Errorf("valueOrDefault(%q, %q) = %q, want %q", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestComputeDiff(t *testing.T) {
	current := map[string]interface{}{
		"version": 1,
		"rule":    map[string]interface{}{"preset": "alphabetical", "order": []interface{}{}},
		"fix":     map[string]interface{}{"maxPasses": 10},
	}
	defaults := map[string]interface{}{
		"version": 1,
		"rule":    map[string]interface{}{"preset": "polymer", "order": []interface{}{}},
		"fix":     map[string]interface{}{"maxPasses": 10},
	}

	diff := computeDiff(current, defaults)
	keys := flattenKeys(diff, "")
	if len(keys) != 1 || keys[0] != "rule.preset" {
		t.Fatalf("flattenKeys(diff) = %v, want [rule.preset]", keys)
	}
	if got := lookup(current, "rule.preset"); got != "alphabetical" {
		t.Errorf("lookup = %v", got)
	}
	if got := lookup(current, "rule.preset.x"); got != nil {
		t.Errorf("lookup through a leaf = %v, want nil", got)
	}
}

func TestRenderConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rule.Preset = "alphabetical"

	tests := []struct {
		format string
		want   []string
	}{
		{"yaml", []string{"preset: alphabetical", "maxPasses: 10", "extensions:"}},
		{"toml", []string{"[rule]", "alphabetical", "maxPasses = 10"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := renderConfig(cfg, tt.format)
			if err != nil {
				t.Fatalf("renderConfig(%s) failed: %v", tt.format, err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s output missing %q\ngot:\n%s", tt.format, want, out)
				}
			}
		})
	}

	if _, err := renderConfig(cfg, "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteConfigHuman_Diff(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fix.MaxPasses = 3
	result := &config.LoadResult{
		Config:       cfg,
		UsedDefaults: false,
		ConfigPath:   "/repo/.polylint/config.json",
		EnvOverrides: []config.EnvOverride{{EnvVar: "POLYLINT_MAX_FIX_PASSES", Field: "fix.maxPasses", Value: "3"}},
	}

	var buf bytes.Buffer
	writeConfigHuman(&buf, result, true)
	out := buf.String()

	for _, want := range []string{
		"Source: /repo/.polylint/config.json",
		"POLYLINT_MAX_FIX_PASSES=3 -> fix.maxPasses",
		"fix.maxPasses: 3 (default: 10)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}

	buf.Reset()
	writeConfigHuman(&buf, &config.LoadResult{Config: config.DefaultConfig(), UsedDefaults: true}, true)
	if !strings.Contains(buf.String(), "no modifications") {
		t.Errorf("defaults should report no modifications, got:\n%s", buf.String())
	}
}

func TestConfigShowResponse(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = true

	resp, err := configShowResponse(&config.LoadResult{Config: cfg}, true)
	if err != nil {
		t.Fatalf("configShowResponse failed: %v", err)
	}
	cache, ok := resp.Config["cache"].(map[string]interface{})
	if !ok || cache["enabled"] != true {
		t.Errorf("expected cache.enabled in diff, got %v", resp.Config)
	}
	if _, ok := resp.Config["rule"]; ok {
		t.Error("unchanged sections should be omitted")
	}
}

func TestBuildRulesResponse(t *testing.T) {
	root := t.TempDir()
	presets := `[presets.house]
description = "house style"
order = ["is", "properties", "ready"]
`
	if err := os.WriteFile(filepath.Join(root, "presets.toml"), []byte(presets), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Rule.PresetFile = "presets.toml"
	cfg.Rule.Preset = "house"

	resp, err := buildRulesResponse(root, cfg)
	if err != nil {
		t.Fatalf("buildRulesResponse failed: %v", err)
	}
	if resp.Rule.ID != "sort-comp" || resp.Preset != "house" {
		t.Errorf("unexpected response %+v", resp)
	}
	if strings.Join(resp.Order, ",") != "is,properties,ready" {
		t.Errorf("order = %v", resp.Order)
	}

	names := make([]string, 0, len(resp.Presets))
	for _, p := range resp.Presets {
		names = append(names, p.Name+"@"+p.Source)
	}
	if strings.Join(names, " ") != "alphabetical@builtin polymer@builtin house@presets.toml" {
		t.Errorf("presets = %v", names)
	}

	var buf bytes.Buffer
	writeRulesHuman(&buf, resp)
	if !strings.Contains(buf.String(), "Canonical order (preset house):\n   1. is\n") {
		t.Errorf("unexpected human output:\n%s", buf.String())
	}
}

func TestBuildRulesResponse_ExplicitOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Rule.Order = []string{"name", "version"}

	resp, err := buildRulesResponse(t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("buildRulesResponse failed: %v", err)
	}
	if resp.Preset != "" {
		t.Errorf("explicit order should not name a preset, got %q", resp.Preset)
	}
	if strings.Join(resp.Order, ",") != "name,version" {
		t.Errorf("order = %v", resp.Order)
	}
}
