package cli

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetTestOutput(&buf)
	logger.InitLogger("debug", logger.FormatText)
	t.Cleanup(func() {
		logger.UnsetTestOutput()
		logger.InitLogger("info", logger.FormatText)
	})
	return &buf
}

func pipelineEvents() []orchestrator.Event {
	return []orchestrator.Event{
		{Phase: orchestrator.PhasePreparing, Msg: "db"},
		{Phase: orchestrator.PhaseFetching, Msg: "cropped"},
		{Phase: orchestrator.PhaseDownloading, Total: 2},
		{Phase: orchestrator.PhaseDownloading, ID: "a.zip", Index: 1, Total: 2},
		{Phase: orchestrator.PhaseDownloading, ID: "b.zip", Index: 2, Total: 2, Err: stderrors.New("HTTP 404")},
		{Phase: orchestrator.PhaseValidating, Total: 2},
		{Phase: orchestrator.PhaseExtracting, Total: 1},
		{Phase: orchestrator.PhaseExtracting, ID: "a.zip", Index: 1, Total: 1},
		{Phase: orchestrator.PhaseCleanup, Msg: "tmp"},
		{Phase: orchestrator.PhaseDone},
	}
}

func TestProgressRendererLogsWithoutBars(t *testing.T) {
	logs := captureLogs(t)
	var out bytes.Buffer

	p := newProgressRenderer(&out, false)
	for _, e := range pipelineEvents() {
		p.OnEvent(e)
	}
	p.Close()

	assert.Empty(t, out.String())
	text := logs.String()
	assert.Contains(t, text, "Setting up folder structure db")
	assert.Contains(t, text, "Fetching catalog (filter cropped)")
	assert.Contains(t, text, "downloading 1/2: a.zip")
	assert.Contains(t, text, "HTTP 404")
	assert.Contains(t, text, "Unpacking archives")
	assert.Contains(t, text, "Pipeline finished")
}

func TestProgressRendererDrawsBars(t *testing.T) {
	logs := captureLogs(t)
	var out bytes.Buffer

	p := newProgressRenderer(&out, true)
	for _, e := range pipelineEvents() {
		p.OnEvent(e)
	}
	p.Close()

	assert.Contains(t, out.String(), "downloading")
	assert.Contains(t, out.String(), "extracting")
	assert.NotContains(t, logs.String(), "downloading 1/2")
	assert.Contains(t, logs.String(), "HTTP 404")
	assert.Nil(t, p.bar)
}
