package report

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luipir/geodiff-action/internal/changeset"
	"github.com/luipir/geodiff-action/internal/types"
)

func testRefs() (types.FileReference, types.FileReference) {
	base := types.FileReference{Role: types.FileRoleBase, Path: "/data/layers.gpkg", Provenance: types.ProvenanceGiven}
	compare := types.FileReference{Role: types.FileRoleCompare, Path: "/tmp/geodiff-old.gpkg", Provenance: types.ProvenanceHistory}
	return base, compare
}

func TestAggregate_Empty(t *testing.T) {
	base, compare := testRefs()

	result := Aggregate(base, compare, nil)

	assert.False(t, result.HasChanges)
	assert.Equal(t, Totals{}, result.Summary)
	assert.Empty(t, result.Tables)
	assert.Empty(t, result.Changes)
}

func TestAggregate_SingleInsert(t *testing.T) {
	base, compare := testRefs()
	records := []changeset.ChangeRecord{
		{Table: "my_layer", Op: changeset.OpInsert, Key: "3"},
	}

	result := Aggregate(base, compare, records)

	assert.True(t, result.HasChanges)
	assert.Equal(t, Totals{TotalChanges: 1, Inserts: 1}, result.Summary)
	assert.Equal(t, TableCounts{Inserts: 1, Total: 1}, result.Tables["my_layer"])
}

func TestAggregate_Invariants(t *testing.T) {
	base, compare := testRefs()
	ops := []changeset.OpKind{changeset.OpInsert, changeset.OpUpdate, changeset.OpDelete}
	tables := []string{"a_layer", "b_layer", "c_layer", "roads", "zones"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 100; round++ {
		n := rng.Intn(50)
		records := make([]changeset.ChangeRecord, n)
		for i := range records {
			records[i] = changeset.ChangeRecord{
				Table: tables[rng.Intn(len(tables))],
				Op:    ops[rng.Intn(len(ops))],
				Key:   fmt.Sprintf("%d", rng.Intn(1000)),
			}
		}

		result := Aggregate(base, compare, records)

		assert.Equal(t, result.Summary.TotalChanges,
			result.Summary.Inserts+result.Summary.Updates+result.Summary.Deletes)
		assert.Equal(t, n, result.Summary.TotalChanges)
		assert.Equal(t, result.HasChanges, result.Summary.TotalChanges > 0)

		var tableTotal, inserts, updates, deletes int
		for _, counts := range result.Tables {
			assert.Equal(t, counts.Total, counts.Inserts+counts.Updates+counts.Deletes)
			tableTotal += counts.Total
			inserts += counts.Inserts
			updates += counts.Updates
			deletes += counts.Deletes
		}
		assert.Equal(t, result.Summary.TotalChanges, tableTotal)
		assert.Equal(t, result.Summary.Inserts, inserts)
		assert.Equal(t, result.Summary.Updates, updates)
		assert.Equal(t, result.Summary.Deletes, deletes)
	}
}

func TestAggregate_PreservesRecordOrder(t *testing.T) {
	base, compare := testRefs()
	records := []changeset.ChangeRecord{
		{Table: "zones", Op: changeset.OpDelete, Key: "9"},
		{Table: "my_layer", Op: changeset.OpInsert, Key: "1"},
	}

	result := Aggregate(base, compare, records)

	assert.Equal(t, records, result.Changes)
}

func TestRender_JSONRoundTrip(t *testing.T) {
	base, compare := testRefs()
	records := []changeset.ChangeRecord{
		{Table: "my_layer", Op: changeset.OpInsert, Key: "1"},
		{Table: "my_layer", Op: changeset.OpUpdate, Key: "2"},
		{Table: "zones", Op: changeset.OpDelete, Key: "7"},
	}
	result := Aggregate(base, compare, records)

	rendered, err := Render(result, types.OutputFormatJSON)
	require.NoError(t, err)

	var parsed DiffResult
	require.NoError(t, json.Unmarshal([]byte(rendered), &parsed))

	assert.Equal(t, result.Summary, parsed.Summary)
	assert.Equal(t, result.Tables, parsed.Tables)
	assert.Equal(t, result.HasChanges, parsed.HasChanges)
	assert.Equal(t, result.Changes, parsed.Changes)
	assert.Equal(t, result.Base, parsed.Base)
	assert.Equal(t, result.Compare, parsed.Compare)
}

func TestRender_Summary(t *testing.T) {
	base, compare := testRefs()

	t.Run("with changes, tables alphabetical", func(t *testing.T) {
		// Records arrive in non-alphabetical table order.
		records := []changeset.ChangeRecord{
			{Table: "zones", Op: changeset.OpDelete, Key: "7"},
			{Table: "my_layer", Op: changeset.OpInsert, Key: "1"},
			{Table: "my_layer", Op: changeset.OpUpdate, Key: "2"},
		}
		result := Aggregate(base, compare, records)

		rendered, err := Render(result, types.OutputFormatSummary)
		require.NoError(t, err)

		want := "GeoDiff Summary: /data/layers.gpkg vs /tmp/geodiff-old.gpkg\n" +
			"Has Changes: Yes\n" +
			"Total Changes: 3\n" +
			"  Inserts: 1\n" +
			"  Updates: 1\n" +
			"  Deletes: 1\n" +
			"Tables:\n" +
			"  my_layer: 2\n" +
			"  zones: 1"
		assert.Equal(t, want, rendered)
	})

	t.Run("no changes, no table lines", func(t *testing.T) {
		result := Aggregate(base, compare, nil)

		rendered, err := Render(result, types.OutputFormatSummary)
		require.NoError(t, err)

		want := "GeoDiff Summary: /data/layers.gpkg vs /tmp/geodiff-old.gpkg\n" +
			"Has Changes: No\n" +
			"Total Changes: 0\n" +
			"  Inserts: 0\n" +
			"  Updates: 0\n" +
			"  Deletes: 0"
		assert.Equal(t, want, rendered)
	})

	t.Run("note is rendered", func(t *testing.T) {
		result := Aggregate(base, compare, nil)
		result.Note = "no previous version to compare"

		rendered, err := Render(result, types.OutputFormatSummary)
		require.NoError(t, err)
		assert.Contains(t, rendered, "Note: no previous version to compare")
	})
}

func TestRender_UnknownFormat(t *testing.T) {
	base, compare := testRefs()
	result := Aggregate(base, compare, nil)

	_, err := Render(result, types.OutputFormat("xml"))
	require.Error(t, err)
}

type fakeEnv struct {
	outputs    map[string]string
	summaries  []string
	outputErr  error
	summaryErr error
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{outputs: make(map[string]string)}
}

func (f *fakeEnv) GetInput(name string) string { return "" }

func (f *fakeEnv) SetOutput(name, value string) error {
	if f.outputErr != nil {
		return f.outputErr
	}
	f.outputs[name] = value
	return nil
}

func (f *fakeEnv) AppendSummary(text string) error {
	if f.summaryErr != nil {
		return f.summaryErr
	}
	f.summaries = append(f.summaries, text)
	return nil
}

func TestPublish_JSON(t *testing.T) {
	base, compare := testRefs()
	records := []changeset.ChangeRecord{{Table: "my_layer", Op: changeset.OpInsert, Key: "1"}}
	result := Aggregate(base, compare, records)
	rendered, err := Render(result, types.OutputFormatJSON)
	require.NoError(t, err)

	env := newFakeEnv()
	require.NoError(t, Publish(env, result, rendered, types.OutputFormatJSON, true))

	assert.Equal(t, "true", env.outputs["has_changes"])

	// diff_result is compact JSON that still round-trips.
	var parsed DiffResult
	require.NoError(t, json.Unmarshal([]byte(env.outputs["diff_result"]), &parsed))
	assert.Equal(t, result.Summary, parsed.Summary)
	assert.NotContains(t, env.outputs["diff_result"], "\n")

	require.Len(t, env.summaries, 1)
	assert.Contains(t, env.summaries[0], "### GeoDiff Action Results")
	assert.Contains(t, env.summaries[0], "**Changes detected:** Yes")
	assert.Contains(t, env.summaries[0], "<tr><td>my_layer</td><td>1</td><td>0</td><td>0</td></tr>")
}

func TestPublish_SummaryFormat(t *testing.T) {
	base, compare := testRefs()
	result := Aggregate(base, compare, nil)
	rendered, err := Render(result, types.OutputFormatSummary)
	require.NoError(t, err)

	env := newFakeEnv()
	require.NoError(t, Publish(env, result, rendered, types.OutputFormatSummary, false))

	assert.Equal(t, rendered, env.outputs["diff_result"])
	assert.Equal(t, "false", env.outputs["has_changes"])
	assert.Empty(t, env.summaries, "job summary disabled")
}

func TestPublish_SummaryFailureIsNotFatal(t *testing.T) {
	base, compare := testRefs()
	result := Aggregate(base, compare, nil)
	rendered, err := Render(result, types.OutputFormatJSON)
	require.NoError(t, err)

	env := newFakeEnv()
	env.summaryErr = fmt.Errorf("summary surface unavailable")

	require.NoError(t, Publish(env, result, rendered, types.OutputFormatJSON, true))
	assert.Contains(t, env.outputs, "diff_result")
}

func TestPublish_OutputFailureIsFatal(t *testing.T) {
	base, compare := testRefs()
	result := Aggregate(base, compare, nil)
	rendered, err := Render(result, types.OutputFormatJSON)
	require.NoError(t, err)

	env := newFakeEnv()
	env.outputErr = fmt.Errorf("GITHUB_OUTPUT is not set")

	require.Error(t, Publish(env, result, rendered, types.OutputFormatJSON, true))
}
