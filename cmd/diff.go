package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/luipir/geodiff-action/internal/changeset"
	appconfig "github.com/luipir/geodiff-action/internal/config"
	"github.com/luipir/geodiff-action/internal/geodiff"
	"github.com/luipir/geodiff-action/internal/ghaction"
	"github.com/luipir/geodiff-action/internal/gitrev"
	"github.com/luipir/geodiff-action/internal/notify"
	"github.com/luipir/geodiff-action/internal/report"
	"github.com/luipir/geodiff-action/internal/types"
)

var (
	baseFile      string
	compareFile   string
	outputFormat  string
	summaryFlag   bool
	historyPolicy string
)

// Factories the test suite overrides to run the pipeline without a real
// SQLite engine or Actions runner.
var (
	newDiffer    = func() geodiff.Differ { return geodiff.NewSQLiteDiffer() }
	newHistory   = func() gitrev.HistorySource { return gitrev.NewGitHistorySource() }
	newActionEnv = func() ghaction.Env { return ghaction.NewRunnerEnv() }
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two geospatial database files and publish the result",
	Long: `
The diff command compares a base GeoPackage/SQLite file against a compare
file, or against the file's previous committed revision when no compare file
is given. It publishes the diff_result and has_changes outputs and appends a
job summary for the CI run.
`,
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().StringVarP(&baseFile, "base-file", "b", "", "Base geospatial database file (required)")
	diffCmd.Flags().StringVarP(&compareFile, "compare-file", "c", "", "Compare file (empty = previous committed revision of the base file)")
	diffCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "", "Output format: json or summary (default json)")
	diffCmd.Flags().BoolVar(&summaryFlag, "summary", true, "Append a job summary to the CI run")
	diffCmd.Flags().StringVar(&historyPolicy, "history-policy", "", "Policy when no previous revision exists: lenient or strict (default lenient)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	log.Println("Starting GeoDiff action...")

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log.Printf("base_file: %s", cfg.BaseFile)
	log.Printf("compare_file: %s", valueOrDash(cfg.CompareFile))
	log.Printf("output_format: %s", cfg.OutputFormat)
	log.Printf("summary: %t", cfg.Summary)
	log.Printf("history_policy: %s", cfg.HistoryPolicy)

	// Reject unsupported formats before any history retrieval or diff work.
	if err := geodiff.CheckSupported(cfg.BaseFile); err != nil {
		return err
	}
	if cfg.CompareFile != "" {
		if err := geodiff.CheckSupported(cfg.CompareFile); err != nil {
			return err
		}
	}

	ctx := context.Background()
	result, err := computeDiff(ctx, cfg)
	if err != nil {
		return err
	}

	rendered, err := report.Render(result, cfg.Format())
	if err != nil {
		return err
	}
	log.Println("Diff Result:")
	fmt.Println(rendered)

	if err := report.Publish(newActionEnv(), result, rendered, cfg.Format(), cfg.Summary); err != nil {
		return err
	}

	notify.NewSlackNotifier(cfg.SlackWebhook).Notify(ctx, result)

	log.Println("GeoDiff action completed successfully")
	return nil
}

// computeDiff runs Resolver -> Invoker -> Normalizer -> Aggregator. A
// missing prior revision degrades to an empty result under the lenient
// policy and fails the run under the strict one.
func computeDiff(ctx context.Context, cfg *appconfig.Config) (*report.DiffResult, error) {
	resolver := gitrev.NewResolver(newHistory())

	base, compare, cleanup, err := resolver.Resolve(ctx, cfg.BaseFile, cfg.CompareFile)
	defer cleanup()
	if err != nil {
		var noHistory *gitrev.NoHistoryError
		if errors.As(err, &noHistory) && cfg.Policy() == types.HistoryPolicyLenient {
			log.Printf("No previous revision available, reporting zero changes: %v", noHistory)
			compare = types.FileReference{
				Role:       types.FileRoleCompare,
				Path:       "(no previous revision)",
				Provenance: types.ProvenanceHistory,
			}
			result := report.Aggregate(base, compare, nil)
			result.Note = noHistory.Error()
			return result, nil
		}
		return nil, err
	}

	invoker := geodiff.NewInvoker(newDiffer())
	raw, err := invoker.Invoke(ctx, base, compare)
	if err != nil {
		return nil, err
	}

	records, err := changeset.Normalize(raw)
	if err != nil {
		return nil, err
	}

	return report.Aggregate(base, compare, records), nil
}

// loadConfig merges the environment configuration with explicit flag
// overrides, then validates the result.
func loadConfig(cmd *cobra.Command) (*appconfig.Config, error) {
	cfg, err := appconfig.LoadEnv()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("base-file") {
		cfg.BaseFile = baseFile
	}
	if cmd.Flags().Changed("compare-file") {
		cfg.CompareFile = compareFile
	}
	if cmd.Flags().Changed("output-format") {
		cfg.OutputFormat = outputFormat
	}
	if cmd.Flags().Changed("summary") {
		cfg.Summary = summaryFlag
	}
	if cmd.Flags().Changed("history-policy") {
		cfg.HistoryPolicy = historyPolicy
	}

	if err := appconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
