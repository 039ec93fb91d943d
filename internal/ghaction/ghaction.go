// Package ghaction is the boundary to the GitHub Actions runner. Inputs
// arrive as INPUT_* environment variables; outputs and the job summary are
// appended to the files named by GITHUB_OUTPUT and GITHUB_STEP_SUMMARY.
package ghaction

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Env abstracts the Actions runner surface so the engine can run and be
// tested without a platform present.
type Env interface {
	GetInput(name string) string
	SetOutput(name, value string) error
	AppendSummary(text string) error
}

// RunnerEnv is the production Env backed by the real runner environment.
type RunnerEnv struct{}

func NewRunnerEnv() *RunnerEnv {
	return &RunnerEnv{}
}

// GetInput reads an action input. The runner uppercases the input name and
// replaces spaces with underscores.
func (e *RunnerEnv) GetInput(name string) string {
	key := "INPUT_" + strings.ReplaceAll(strings.ToUpper(name), " ", "_")
	return strings.TrimSpace(os.Getenv(key))
}

// SetOutput appends a name/value pair to the GITHUB_OUTPUT file. Multiline
// values use the runner's heredoc syntax with a random delimiter.
func (e *RunnerEnv) SetOutput(name, value string) error {
	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return fmt.Errorf("GITHUB_OUTPUT is not set")
	}

	var entry string
	if strings.ContainsAny(value, "\r\n") {
		delim := "ghadelim_" + uuid.NewString()
		if strings.Contains(value, delim) {
			return fmt.Errorf("output value for %q contains its own delimiter", name)
		}
		entry = fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
	} else {
		entry = fmt.Sprintf("%s=%s\n", name, value)
	}

	return appendFile(path, entry)
}

// AppendSummary appends markdown to the job-summary file.
func (e *RunnerEnv) AppendSummary(text string) error {
	path := os.Getenv("GITHUB_STEP_SUMMARY")
	if path == "" {
		return fmt.Errorf("GITHUB_STEP_SUMMARY is not set")
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return appendFile(path, text)
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write to %s: %w", path, err)
	}
	return nil
}
