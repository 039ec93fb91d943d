package types

import "fmt"

// OutputFormat selects the primary rendering of a diff result.
type OutputFormat string

const (
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatSummary OutputFormat = "summary"
)

// HistoryPolicy controls what happens when the compare file must come from
// git history but the path has no prior committed revision.
type HistoryPolicy string

const (
	// HistoryPolicyLenient completes the run with zero changes and an
	// explanatory note.
	HistoryPolicyLenient HistoryPolicy = "lenient"
	// HistoryPolicyStrict fails the run.
	HistoryPolicyStrict HistoryPolicy = "strict"
)

// Config holds all action inputs. GitHub Actions exposes inputs to the
// container as INPUT_* environment variables.
type Config struct {
	BaseFile     string `json:"base_file" env:"INPUT_BASE_FILE"`
	CompareFile  string `json:"compare_file" env:"INPUT_COMPARE_FILE"`
	OutputFormat string `json:"output_format" env:"INPUT_OUTPUT_FORMAT,default=json"`
	Summary      bool   `json:"summary" env:"INPUT_SUMMARY,default=true"`
	// Token is passed through to the history/platform layer, never logged.
	Token         string `json:"-" env:"INPUT_TOKEN"`
	HistoryPolicy string `json:"history_policy" env:"INPUT_HISTORY_POLICY,default=lenient"`
	SlackWebhook  string `json:"-" env:"INPUT_SLACK_WEBHOOK"`
}

// Format returns the configured output format.
func (c *Config) Format() OutputFormat {
	return OutputFormat(c.OutputFormat)
}

// Policy returns the configured history policy.
func (c *Config) Policy() HistoryPolicy {
	return HistoryPolicy(c.HistoryPolicy)
}

func (f OutputFormat) Valid() bool {
	return f == OutputFormatJSON || f == OutputFormatSummary
}

func (p HistoryPolicy) Valid() bool {
	return p == HistoryPolicyLenient || p == HistoryPolicyStrict
}

func (f OutputFormat) String() string { return string(f) }

func (p HistoryPolicy) String() string { return string(p) }

// FileRole identifies which side of the comparison a file is on.
type FileRole string

const (
	FileRoleBase    FileRole = "base"
	FileRoleCompare FileRole = "compare"
)

// Provenance records how a compared file was obtained.
type Provenance string

const (
	// ProvenanceGiven means the path was supplied directly as an input.
	ProvenanceGiven Provenance = "given"
	// ProvenanceHistory means the file was materialized from a prior
	// committed revision.
	ProvenanceHistory Provenance = "derived-from-history"
)

// FileReference is one resolved, comparable input file.
type FileReference struct {
	Role       FileRole   `json:"role"`
	Path       string     `json:"path"`
	Provenance Provenance `json:"provenance"`
}

func (r FileReference) String() string {
	return fmt.Sprintf("%s (%s, %s)", r.Path, r.Role, r.Provenance)
}
