package hooks_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/hooks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHookManager(t *testing.T) {
	manager := hooks.NewHookManager()
	assert.NotNil(t, manager, "NewHookManager should return a non-nil manager")
}

func TestAddAndExecuteHook(t *testing.T) {
	tests := []struct {
		name        string
		hook        hooks.Hook
		expectedErr error
	}{
		{
			name: "valid hook",
			hook: hooks.Hook{Type: hooks.PostExtract, Content: `// nothing to do`},
		},
		{
			name:        "empty hook type",
			hook:        hooks.Hook{Type: "", Content: "test content"},
			expectedErr: hooks.ErrHookTypeEmpty,
		},
		{
			name:        "unknown hook type",
			hook:        hooks.Hook{Type: "pre-install", Content: "test content"},
			expectedErr: pkgerrors.ErrHookLoad,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			manager := hooks.NewHookManager()
			err := manager.AddHook(testCase.hook)
			if testCase.expectedErr != nil {
				assert.ErrorIs(t, err, testCase.expectedErr)
				assert.False(t, manager.HasHook(testCase.hook.Type))
				return
			}
			require.NoError(t, err)
			assert.True(t, manager.HasHook(testCase.hook.Type))
			assert.NoError(t, manager.Execute(context.Background(), testCase.hook.Type, hooks.HookContext{}))
		})
	}
}

func TestRemoveHook(t *testing.T) {
	manager := hooks.NewHookManager()
	require.NoError(t, manager.AddHook(hooks.Hook{Type: hooks.PostDataset, Content: `err = "boom"`}))
	assert.Error(t, manager.Execute(context.Background(), hooks.PostDataset, hooks.HookContext{}))

	require.NoError(t, manager.RemoveHook(hooks.PostDataset))
	assert.False(t, manager.HasHook(hooks.PostDataset))
	assert.NoError(t, manager.Execute(context.Background(), hooks.PostDataset, hooks.HookContext{}))

	assert.ErrorIs(t, manager.RemoveHook(""), hooks.ErrHookTypeEmpty)
}

func TestLoadFromFiles(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "check.tengo")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`err = "loaded " + archiveName`), 0o644))

	manager := hooks.NewHookManager()
	require.NoError(t, hooks.LoadFromFiles(manager, map[hooks.HookType]string{
		hooks.PostExtract: scriptPath,
		hooks.PostDataset: "",
	}))
	assert.True(t, manager.HasHook(hooks.PostExtract))
	assert.False(t, manager.HasHook(hooks.PostDataset))

	err := manager.Execute(context.Background(), hooks.PostExtract, hooks.HookContext{ArchiveName: "a.zip"})
	assert.ErrorContains(t, err, "loaded a.zip")

	err = hooks.LoadFromFiles(hooks.NewHookManager(), map[hooks.HookType]string{
		hooks.PostExtract: filepath.Join(dir, "missing.tengo"),
	})
	assert.ErrorIs(t, err, pkgerrors.ErrHookLoad)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"post-extract.tengo": `// extract`,
		"post-dataset.tengo": `// dataset`,
		"pre-install.tengo":  `// ignored, unknown type`,
		"post-extract.txt":   `ignored, wrong extension`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	manager := hooks.NewHookManager()
	require.NoError(t, hooks.LoadFromDir(manager, dir))
	assert.True(t, manager.HasHook(hooks.PostExtract))
	assert.True(t, manager.HasHook(hooks.PostDataset))
	assert.False(t, manager.HasHook("pre-install"))

	assert.NoError(t, hooks.LoadFromDir(hooks.NewHookManager(), filepath.Join(dir, "missing")))
}

func TestHookTemplate(t *testing.T) {
	for _, hookType := range hooks.Types {
		t.Run(string(hookType), func(t *testing.T) {
			template := hooks.HookTemplate(hookType)
			assert.Contains(t, template, "datasetDir")

			// Templates must compile and run as-is.
			manager := hooks.NewHookManager()
			require.NoError(t, manager.AddHook(hooks.Hook{Type: hookType, Content: template}))
			assert.NoError(t, manager.Execute(context.Background(), hookType, hooks.HookContext{}))
		})
	}
	assert.Contains(t, hooks.HookTemplate("bogus"), "Unknown")
}
