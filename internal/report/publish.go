package report

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/luipir/geodiff-action/internal/ghaction"
	"github.com/luipir/geodiff-action/internal/types"
)

// Publish writes the machine-consumable outputs and, when enabled, the
// job-summary block. The primary outputs (diff_result, has_changes) must
// succeed or the run fails; the job summary is best-effort.
func Publish(env ghaction.Env, result *DiffResult, rendered string, format types.OutputFormat, withSummary bool) error {
	output := rendered
	if format == types.OutputFormatJSON {
		// Compact form for the output variable; the indented rendering is
		// for humans reading the log.
		compact, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode diff result: %w", err)
		}
		output = string(compact)
	}

	if err := env.SetOutput("diff_result", output); err != nil {
		return fmt.Errorf("failed to set diff_result output: %w", err)
	}
	if err := env.SetOutput("has_changes", fmt.Sprintf("%t", result.HasChanges)); err != nil {
		return fmt.Errorf("failed to set has_changes output: %w", err)
	}

	if withSummary {
		if err := env.AppendSummary(jobSummary(result)); err != nil {
			log.Printf("Warning: failed to append job summary: %v", err)
		}
	}
	return nil
}

// jobSummary renders the markdown block appended to the run's job-summary
// surface, independent of the primary output format.
func jobSummary(result *DiffResult) string {
	var b strings.Builder

	b.WriteString("### GeoDiff Action Results\n\n")
	fmt.Fprintf(&b, "**Base file:** `%s`\n\n", result.Base.Path)
	if result.Compare.Provenance == types.ProvenanceHistory {
		fmt.Fprintf(&b, "**Compare file:** `%s` (previous committed revision)\n\n", result.Compare.Path)
	} else {
		fmt.Fprintf(&b, "**Compare file:** `%s`\n\n", result.Compare.Path)
	}
	if result.HasChanges {
		b.WriteString("**Changes detected:** Yes\n\n")
	} else {
		b.WriteString("**Changes detected:** No\n\n")
	}

	b.WriteString("<table><tr><th>Change Type</th><th>Count</th></tr>")
	fmt.Fprintf(&b, "<tr><td>Total Changes</td><td>%d</td></tr>", result.Summary.TotalChanges)
	fmt.Fprintf(&b, "<tr><td>Inserts</td><td>%d</td></tr>", result.Summary.Inserts)
	fmt.Fprintf(&b, "<tr><td>Updates</td><td>%d</td></tr>", result.Summary.Updates)
	fmt.Fprintf(&b, "<tr><td>Deletes</td><td>%d</td></tr>", result.Summary.Deletes)
	b.WriteString("</table>\n\n")

	if len(result.Tables) > 0 {
		b.WriteString("<details><summary>Per-table breakdown</summary><table>")
		b.WriteString("<tr><th>Table</th><th>Inserts</th><th>Updates</th><th>Deletes</th></tr>")
		for _, name := range result.SortedTables() {
			counts := result.Tables[name]
			fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%d</td><td>%d</td></tr>",
				name, counts.Inserts, counts.Updates, counts.Deletes)
		}
		b.WriteString("</table></details>\n")
	}

	if result.Note != "" {
		fmt.Fprintf(&b, "\n> %s\n", result.Note)
	}

	return b.String()
}
