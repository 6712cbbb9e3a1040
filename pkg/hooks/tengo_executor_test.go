package hooks_test

import (
	"context"
	"testing"

	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/hooks"
	"github.com/stretchr/testify/assert"
)

func TestTengoExecutor(t *testing.T) {
	executor := hooks.NewTengoExecutor()
	ctx := context.Background()
	hc := hooks.HookContext{
		ArchiveName: "sample.zip",
		ArchivePath: "/scratch/sample.zip",
		ClassDir:    "/dataset/sample",
		DatasetDir:  "/dataset",
		Vars: map[string]interface{}{
			"customVar": "customValue",
		},
	}

	t.Run("Execute empty script", func(t *testing.T) {
		executor.AddScript(hooks.PostExtract, `// This is a valid script that does nothing`)

		err := executor.Execute(ctx, hooks.PostExtract, hc)
		assert.NoError(t, err, "Execute should not return an error for valid script")
	})

	t.Run("Execute script with runtime error", func(t *testing.T) {
		executor.AddScript(hooks.PostDataset, `non_existent_function()`)

		err := executor.Execute(ctx, hooks.PostDataset, hc)
		assert.ErrorIs(t, err, pkgerrors.ErrHookExecution)
	})

	t.Run("Execute non-existent script", func(t *testing.T) {
		err := executor.Execute(ctx, "non-existent-hooks", hc)
		assert.NoError(t, err, "Execute should not return an error for non-existent hooks")
	})

	t.Run("HasScript check", func(t *testing.T) {
		hookType := hooks.HookType("test-hooks")
		assert.False(t, executor.HasScript(hookType), "Should not have script before adding")

		executor.AddScript(hookType, "// test script")
		assert.True(t, executor.HasScript(hookType), "Should have script after adding")

		executor.RemoveScript(hookType)
		assert.False(t, executor.HasScript(hookType), "Should not have script after removal")
	})

	t.Run("Context variables are accessible", func(t *testing.T) {
		script := `
			if archiveName != "sample.zip" || classDir != "/dataset/sample" || customVar != "customValue" {
				err = "unexpected context: " + archiveName
			}
			if vars.customVar != "customValue" {
				err = "vars map not passed"
			}
		`
		executor.AddScript(hooks.PostExtract, script)

		err := executor.Execute(ctx, hooks.PostExtract, hc)
		assert.NoError(t, err, "Context variables should be accessible in script")
	})

	t.Run("Script reports failure through err", func(t *testing.T) {
		executor.AddScript(hooks.PostExtract, `err = "class " + classDir + " is empty"`)

		err := executor.Execute(ctx, hooks.PostExtract, hc)
		assert.ErrorIs(t, err, pkgerrors.ErrHookScript)
		assert.Contains(t, err.Error(), "class /dataset/sample is empty")
	})

	t.Run("Post-dataset sees classes and failures", func(t *testing.T) {
		script := `
			if len(classes) != 2 || len(failed) != 1 {
				err = "wrong counts"
			}
		`
		executor.AddScript(hooks.PostDataset, script)

		err := executor.Execute(ctx, hooks.PostDataset, hooks.HookContext{
			DatasetDir: "/dataset",
			Classes:    []string{"/dataset/a", "/dataset/b"},
			Failed:     []string{"https://example.com/c.zip"},
		})
		assert.NoError(t, err)
	})

	t.Run("Canceled context", func(t *testing.T) {
		executor.AddScript(hooks.PostDataset, `for { }`)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		err := executor.Execute(canceled, hooks.PostDataset, hooks.HookContext{})
		assert.Error(t, err)
	})
}
