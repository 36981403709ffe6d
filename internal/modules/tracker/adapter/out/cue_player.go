package out

import (
	"fmt"
	"os/exec"

	hclog "github.com/hashicorp/go-hclog"

	"prodman/internal/modules/tracker/domain"
	trackerout "prodman/internal/modules/tracker/port/out"
)

// ExecCuePlayer speaks cues through a text-to-speech command and plays
// sound files through an audio player command. Each cue runs in its own
// process; Play returns as soon as the process is started.
type ExecCuePlayer struct {
	speech        string
	sound         string
	applauseSound string
	dingSound     string
	logger        hclog.Logger
}

type ExecCueConfig struct {
	SpeechCommand string
	SoundCommand  string
	ApplauseSound string
	DingSound     string
}

func NewExecCuePlayer(cfg ExecCueConfig, logger hclog.Logger) trackerout.CuePlayer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecCuePlayer{
		speech:        cfg.SpeechCommand,
		sound:         cfg.SoundCommand,
		applauseSound: cfg.ApplauseSound,
		dingSound:     cfg.DingSound,
		logger:        logger,
	}
}

func (p *ExecCuePlayer) Play(cue domain.Cue) {
	switch cue.Kind {
	case domain.CueDing:
		p.run(p.sound, p.dingSound)
	case domain.CueApplause:
		p.run(p.sound, p.applauseSound)
	default:
		if phrase := Phrase(cue); phrase != "" {
			p.run(p.speech, phrase)
		}
	}
}

func (p *ExecCuePlayer) run(command, arg string) {
	if command == "" || arg == "" {
		return
	}
	cmd := exec.Command(command, arg)
	if err := cmd.Start(); err != nil {
		p.logger.Debug("cue command failed to start", "command", command, "error", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			p.logger.Debug("cue command exited", "command", command, "error", err)
		}
	}()
}

// Phrase is what gets spoken for cue, or "" for cues that are sounds only.
func Phrase(cue domain.Cue) string {
	switch cue.Kind {
	case domain.CueBlockStarted:
		if cue.Focus != "" {
			return fmt.Sprintf("start %s! focus on %s!", cue.Task, cue.Focus)
		}
		return fmt.Sprintf("start %s!", cue.Task)
	case domain.CueHasslerPrompt:
		return fmt.Sprintf("type, okay, to start %s", cue.Task)
	case domain.CueNext:
		return "next!"
	case domain.CuePaused:
		return "pausing current session"
	case domain.CueResumed:
		return fmt.Sprintf("unpausing, and returning to %s", cue.Task)
	case domain.CueSessionFinished:
		return "session completed!"
	default:
		return ""
	}
}

// LogCuePlayer writes every cue to the log.
type LogCuePlayer struct {
	logger hclog.Logger
}

func NewLogCuePlayer(logger hclog.Logger) trackerout.CuePlayer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return LogCuePlayer{logger: logger}
}

func (p LogCuePlayer) Play(cue domain.Cue) {
	p.logger.Info("cue", "kind", string(cue.Kind), "task", cue.Task.String(), "focus", cue.Focus)
}

// Fanout forwards each cue to every player in order.
type Fanout []trackerout.CuePlayer

func (f Fanout) Play(cue domain.Cue) {
	for _, p := range f {
		if p != nil {
			p.Play(cue)
		}
	}
}
