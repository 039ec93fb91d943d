package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luipir/geodiff-action/internal/types"
)

// Render produces the primary output in the requested format.
func Render(result *DiffResult, format types.OutputFormat) (string, error) {
	switch format {
	case types.OutputFormatJSON:
		payload, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to render diff result as JSON: %w", err)
		}
		return string(payload), nil
	case types.OutputFormatSummary:
		return renderSummary(result), nil
	default:
		return "", fmt.Errorf("unknown output format %q", format)
	}
}

func renderSummary(result *DiffResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "GeoDiff Summary: %s vs %s\n", result.Base.Path, result.Compare.Path)
	if result.HasChanges {
		b.WriteString("Has Changes: Yes\n")
	} else {
		b.WriteString("Has Changes: No\n")
	}
	fmt.Fprintf(&b, "Total Changes: %d\n", result.Summary.TotalChanges)
	fmt.Fprintf(&b, "  Inserts: %d\n", result.Summary.Inserts)
	fmt.Fprintf(&b, "  Updates: %d\n", result.Summary.Updates)
	fmt.Fprintf(&b, "  Deletes: %d\n", result.Summary.Deletes)

	if len(result.Tables) > 0 {
		b.WriteString("Tables:\n")
		for _, name := range result.SortedTables() {
			fmt.Fprintf(&b, "  %s: %d\n", name, result.Tables[name].Total)
		}
	}

	if result.Note != "" {
		fmt.Fprintf(&b, "Note: %s\n", result.Note)
	}

	return strings.TrimRight(b.String(), "\n")
}
