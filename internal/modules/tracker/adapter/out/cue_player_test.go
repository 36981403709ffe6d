package out_test

import (
	"bytes"
	"strings"
	"testing"

	hclog "github.com/hashicorp/go-hclog"

	trackerout "prodman/internal/modules/tracker/adapter/out"
	"prodman/internal/modules/tracker/domain"
)

func TestPhrase(t *testing.T) {
	t.Parallel()
	cases := []struct {
		cue  domain.Cue
		want string
	}{
		{domain.Cue{Kind: domain.CueBlockStarted, Task: "work"}, "start work!"},
		{domain.Cue{Kind: domain.CueBlockStarted, Task: "work", Focus: "essay"}, "start work! focus on essay!"},
		{domain.Cue{Kind: domain.CueHasslerPrompt, Task: "movement"}, "type, okay, to start movement"},
		{domain.Cue{Kind: domain.CueResumed, Task: "work"}, "unpausing, and returning to work"},
		{domain.Cue{Kind: domain.CueDing}, ""},
		{domain.Cue{Kind: domain.CueApplause}, ""},
	}
	for _, tc := range cases {
		if got := trackerout.Phrase(tc.cue); got != tc.want {
			t.Fatalf("Phrase(%s) = %q, want %q", tc.cue.Kind, got, tc.want)
		}
	}
}

func TestFanoutLogsEveryCue(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Info})
	silent := trackerout.NewExecCuePlayer(trackerout.ExecCueConfig{}, nil)
	fan := trackerout.Fanout{silent, trackerout.NewLogCuePlayer(logger), nil}

	fan.Play(domain.Cue{Kind: domain.CueNext, Task: "work"})
	fan.Play(domain.Cue{Kind: domain.CueDing, Task: "work"})
	out := buf.String()
	if strings.Count(out, "cue:") != 2 || !strings.Contains(out, "kind=ding") {
		t.Fatalf("expected both cues logged, got:\n%s", out)
	}
}
