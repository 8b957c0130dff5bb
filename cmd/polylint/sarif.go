package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"

	"polylint/internal/lint"
	"polylint/internal/sortcomp"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool              SARIFTool               `json:"tool"`
	AutomationDetails *SARIFAutomationDetails `json:"automationDetails,omitempty"`
	Results           []SARIFResult           `json:"results"`
	Invocations       []SARIFInvocation       `json:"invocations,omitempty"`
}

// SARIFAutomationDetails identifies the run.
type SARIFAutomationDetails struct {
	ID   string `json:"id,omitempty"`
	GUID string `json:"guid,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	FullDescription      *SARIFMessage           `json:"fullDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
	Properties           map[string]interface{}  `json:"properties,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID       string            `json:"ruleId"`
	RuleIndex    int               `json:"ruleIndex"`
	Level        string            `json:"level,omitempty"`
	Message      SARIFMessage      `json:"message"`
	Locations    []SARIFLocation   `json:"locations,omitempty"`
	Fingerprints map[string]string `json:"fingerprints,omitempty"`
	Fixes        []SARIFFix        `json:"fixes,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text     string `json:"text,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

// SARIFFix is a proposed fix for a result.
type SARIFFix struct {
	Description     *SARIFMessage         `json:"description,omitempty"`
	ArtifactChanges []SARIFArtifactChange `json:"artifactChanges"`
}

// SARIFArtifactChange groups the replacements made to one file.
type SARIFArtifactChange struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Replacements     []SARIFReplacement    `json:"replacements"`
}

// SARIFReplacement replaces a character range.
type SARIFReplacement struct {
	DeletedRegion   SARIFCharRegion       `json:"deletedRegion"`
	InsertedContent *SARIFArtifactContent `json:"insertedContent,omitempty"`
}

// SARIFCharRegion is a region given by character offsets. Offset zero is
// meaningful, so the fields are always emitted.
type SARIFCharRegion struct {
	CharOffset int `json:"charOffset"`
	CharLength int `json:"charLength"`
}

// SARIFArtifactContent is literal file content.
type SARIFArtifactContent struct {
	Text string `json:"text"`
}

// SARIFInvocation describes a single invocation of the tool.
type SARIFInvocation struct {
	ExecutionSuccessful        bool                   `json:"executionSuccessful"`
	WorkingDirectory           *SARIFArtifactLocation `json:"workingDirectory,omitempty"`
	Machine                    string                 `json:"machine,omitempty"`
	ToolExecutionNotifications []SARIFNotification    `json:"toolExecutionNotifications,omitempty"`
}

// SARIFNotification reports a problem the tool hit while running.
type SARIFNotification struct {
	Level      string                    `json:"level"`
	Message    SARIFMessage              `json:"message"`
	Locations  []SARIFLocation           `json:"locations,omitempty"`
	Descriptor *SARIFReportingDescriptor `json:"descriptor,omitempty"`
}

// SARIFReportingDescriptor references a notification kind.
type SARIFReportingDescriptor struct {
	ID string `json:"id"`
}

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// FormatSummaryAsSARIF converts a lint run to SARIF format.
func FormatSummaryAsSARIF(s *lint.Summary, version string) (string, error) {
	meta := sortcomp.RuleMeta
	rules := []SARIFRule{
		{
			ID:   meta.ID,
			Name: "SortComp",
			ShortDescription: &SARIFMessage{
				Text: "Object keys must be in canonical order",
			},
			FullDescription: &SARIFMessage{
				Text: meta.Description,
			},
			DefaultConfiguration: &SARIFRuleConfiguration{
				Level: "error",
			},
			Properties: map[string]interface{}{
				"category":    meta.Category,
				"recommended": meta.Recommended,
				"fixable":     meta.Fixable,
				"tags":        []string{"style", "polymer"},
			},
		},
	}

	results := make([]SARIFResult, 0, s.Violations)
	var notifications []SARIFNotification

	for _, f := range s.Files {
		artifact := &SARIFArtifactLocation{URI: f.Path, URIBaseID: "%SRCROOT%"}

		if f.Error != nil {
			notifications = append(notifications, SARIFNotification{
				Level:   "error",
				Message: SARIFMessage{Text: f.Error.Message},
				Locations: []SARIFLocation{
					{PhysicalLocation: &SARIFPhysicalLocation{ArtifactLocation: artifact}},
				},
				Descriptor: &SARIFReportingDescriptor{ID: string(f.Error.Code)},
			})
		}

		for _, d := range f.Diagnostics {
			result := SARIFResult{
				RuleID:    d.RuleID,
				RuleIndex: 0,
				Level:     "error",
				Message:   SARIFMessage{Text: d.Message},
				Locations: []SARIFLocation{
					{
						PhysicalLocation: &SARIFPhysicalLocation{
							ArtifactLocation: artifact,
							Region: &SARIFRegion{
								StartLine:   d.Loc.Start.Line,
								StartColumn: d.Loc.Start.Column,
								EndLine:     d.Loc.End.Line,
								EndColumn:   d.Loc.End.Column,
							},
						},
					},
				},
				Fingerprints: map[string]string{
					"polylint/v1": generateFingerprint(f.Path, d),
				},
			}
			if fix := sarifFix(f.Output, artifact, d.Fix); fix != nil {
				result.Fixes = []SARIFFix{*fix}
			}
			results = append(results, result)
		}
	}

	report := SARIFReport{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []SARIFRun{
			{
				Tool: SARIFTool{
					Driver: SARIFDriver{
						Name:            "polylint",
						Version:         version,
						SemanticVersion: version,
						Rules:           rules,
					},
				},
				AutomationDetails: &SARIFAutomationDetails{
					ID:   "polylint/check/",
					GUID: s.RunID,
				},
				Results: results,
				Invocations: []SARIFInvocation{
					{
						ExecutionSuccessful: !s.HasErrors(),
						WorkingDirectory: &SARIFArtifactLocation{
							URI: s.Root,
						},
						Machine:                    runtime.GOOS + "/" + runtime.GOARCH,
						ToolExecutionNotifications: notifications,
					},
				},
			},
		},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal SARIF: %w", err)
	}
	return string(data), nil
}

// sarifFix converts a byte-range fix into a character-range replacement
// against text, the file content the diagnostic was computed from.
func sarifFix(text string, artifact *SARIFArtifactLocation, fix *sortcomp.Fix) *SARIFFix {
	if fix == nil || fix.Range.Start < 0 || fix.Range.End > len(text) || fix.Range.Start > fix.Range.End {
		return nil
	}
	offset := utf8.RuneCountInString(text[:fix.Range.Start])
	length := utf8.RuneCountInString(text[fix.Range.Start:fix.Range.End])
	return &SARIFFix{
		Description: &SARIFMessage{Text: "Swap the two entries"},
		ArtifactChanges: []SARIFArtifactChange{
			{
				ArtifactLocation: *artifact,
				Replacements: []SARIFReplacement{
					{
						DeletedRegion:   SARIFCharRegion{CharOffset: offset, CharLength: length},
						InsertedContent: &SARIFArtifactContent{Text: fix.Text},
					},
				},
			},
		},
	}
}

// generateFingerprint creates a stable fingerprint for deduplication.
func generateFingerprint(path string, d sortcomp.Diagnostic) string {
	data := fmt.Sprintf("%s:%s:%s:%s", path, d.RuleID, d.Data["currName"], d.Data["prevName"])
	hash := blake2b.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
