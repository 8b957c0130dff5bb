package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"polylint/internal/config"
	"polylint/internal/errors"
	"polylint/internal/sortcomp"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show rule metadata and the effective key order",
	Long: `Show the sort-comp rule, the canonical key order selected by the
configuration, and the available presets.`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(rulesCmd)
}

// PresetInfo describes one selectable preset.
type PresetInfo struct {
	Name        string   `json:"name"`
	Source      string   `json:"source"` // builtin or the preset file path
	Description string   `json:"description,omitempty"`
	Order       []string `json:"order"`
}

// RulesResponse is the response format for rules
type RulesResponse struct {
	Rule    sortcomp.Meta `json:"rule"`
	Message string        `json:"message"`
	Preset  string        `json:"preset,omitempty"`
	Order   []string      `json:"order"`
	Presets []PresetInfo  `json:"presets"`
}

func runRules(cmd *cobra.Command, args []string) error {
	repoRoot, err := getRepoRoot()
	if err != nil {
		return err
	}
	loaded, err := loadConfig(repoRoot)
	if err != nil {
		return err
	}
	cfg := loaded.Config

	resp, err := buildRulesResponse(repoRoot, cfg)
	if err != nil {
		return err
	}

	switch rulesFormat {
	case "json":
		s, err := formatJSON(resp)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
		return err
	case "human", "":
		writeRulesHuman(cmd.OutOrStdout(), resp)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use: human, json)", rulesFormat)
	}
}

func buildRulesResponse(repoRoot string, cfg *config.Config) (*RulesResponse, error) {
	order, err := cfg.ResolveOrder(repoRoot)
	if err != nil {
		return nil, errors.NewLintError(errors.ConfigInvalid, "cannot resolve canonical order", err, nil)
	}

	resp := &RulesResponse{
		Rule:    sortcomp.RuleMeta,
		Message: sortcomp.MessageTemplate,
		Order:   order.Keys(),
	}
	if len(cfg.Rule.Order) == 0 {
		resp.Preset = valueOrDefault(cfg.Rule.Preset, sortcomp.DefaultPreset)
	}
	if resp.Order == nil {
		resp.Order = []string{}
	}

	for _, name := range sortcomp.PresetNames() {
		keys := sortcomp.Presets[name]
		if keys == nil {
			keys = []string{}
		}
		resp.Presets = append(resp.Presets, PresetInfo{Name: name, Source: "builtin", Order: keys})
	}
	if cfg.Rule.PresetFile != "" {
		path := resolvePath(repoRoot, cfg.Rule.PresetFile)
		pf, err := config.LoadPresetFile(path)
		if err != nil {
			return nil, errors.NewLintError(errors.ConfigInvalid, "cannot load preset file", err, nil)
		}
		for _, name := range pf.Names() {
			def := pf.Presets[name]
			resp.Presets = append(resp.Presets, PresetInfo{
				Name:        name,
				Source:      cfg.Rule.PresetFile,
				Description: def.Description,
				Order:       def.Order,
			})
		}
	}
	return resp, nil
}

func writeRulesHuman(w io.Writer, resp *RulesResponse) {
	fixable := "no"
	if resp.Rule.Fixable != "" {
		fixable = resp.Rule.Fixable
	}
	fmt.Fprintf(w, "%s\n", resp.Rule.ID)
	fmt.Fprintf(w, "  %s\n", resp.Rule.Description)
	fmt.Fprintf(w, "  category: %s, recommended: %v, fixable: %s\n", resp.Rule.Category, resp.Rule.Recommended, fixable)
	fmt.Fprintln(w)

	if resp.Preset != "" {
		fmt.Fprintf(w, "Canonical order (preset %s):\n", resp.Preset)
	} else {
		fmt.Fprintln(w, "Canonical order (rule.order):")
	}
	if len(resp.Order) == 0 {
		fmt.Fprintln(w, "  (none, all keys ascending)")
	}
	for i, k := range resp.Order {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, k)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Presets:")
	for _, p := range resp.Presets {
		line := fmt.Sprintf("  %-14s %s", p.Name, p.Source)
		if p.Description != "" {
			line += " - " + p.Description
		}
		fmt.Fprintln(w, line)
		if len(p.Order) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(p.Order, ", "))
		}
	}
}
