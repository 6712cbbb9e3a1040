package cli

import (
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"github.com/glorpus-work/digipathos/internal/logger"
	"github.com/glorpus-work/digipathos/pkg/orchestrator"
)

const barTemplate pb.ProgressBarTemplate = `{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// progressRenderer turns orchestrator events into progress bars and log lines.
// Only the downloading and extracting phases get a bar; everything else is logged.
type progressRenderer struct {
	out     io.Writer
	enabled bool

	mu    sync.Mutex
	phase string
	bar   *pb.ProgressBar
}

func newProgressRenderer(out io.Writer, enabled bool) *progressRenderer {
	return &progressRenderer{out: out, enabled: enabled}
}

// OnEvent is passed to orchestrator.Hooks.
func (p *progressRenderer) OnEvent(e orchestrator.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Phase != p.phase {
		p.finishBar()
		p.phase = e.Phase
	}

	if e.Err != nil {
		logger.Warn("Step failed", logger.Fields{"phase": e.Phase, "archive": e.ID, "error": e.Err.Error()})
	}

	if p.enabled && hasBar(e.Phase) && e.Total > 0 {
		if p.bar == nil {
			p.bar = pb.New(e.Total).
				SetWriter(p.out).
				SetTemplate(barTemplate).
				Set("prefix", e.Phase)
			p.bar.Start()
		}
		if e.Index > 0 {
			p.bar.Increment()
		}
		return
	}

	if e.Index == 0 {
		if e.Phase != orchestrator.PhaseError {
			logger.Info(phaseMessage(e), logger.Fields{"phase": e.Phase})
		}
		return
	}
	if e.Err == nil {
		logger.Debugf("%s %d/%d: %s", e.Phase, e.Index, e.Total, e.ID)
	}
}

// Close finishes a bar left open by the last phase.
func (p *progressRenderer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishBar()
}

func (p *progressRenderer) finishBar() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

func hasBar(phase string) bool {
	return phase == orchestrator.PhaseDownloading || phase == orchestrator.PhaseExtracting
}

func phaseMessage(e orchestrator.Event) string {
	switch e.Phase {
	case orchestrator.PhasePreparing:
		return "Setting up folder structure " + e.Msg
	case orchestrator.PhaseFetching:
		return "Fetching catalog (filter " + e.Msg + ")"
	case orchestrator.PhaseDownloading:
		return "Downloading archives"
	case orchestrator.PhaseValidating:
		return "Validating downloads"
	case orchestrator.PhaseExtracting:
		return "Unpacking archives"
	case orchestrator.PhaseHooks:
		return "Running " + e.ID + " hook"
	case orchestrator.PhaseCleanup:
		return "Removing scratch directory " + e.Msg
	case orchestrator.PhaseDone:
		return "Pipeline finished"
	}
	return e.Phase
}
