package in

import (
	"bufio"
	"context"
	"io"
	"strings"

	trackerdto "prodman/internal/modules/tracker/dto"
	trackerin "prodman/internal/modules/tracker/port/in"
)

type CLIHandler struct {
	usecase trackerin.Usecase
}

func NewCLIHandler(usecase trackerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Deploy(ctx context.Context, blocks []trackerdto.Block, skipIncomplete bool) (trackerdto.ScheduleOutput, error) {
	return h.usecase.Deploy(ctx, trackerdto.DeployInput{Blocks: blocks, SkipIncomplete: skipIncomplete})
}

func (h CLIHandler) DeployTemplate(ctx context.Context, id string) (trackerdto.ScheduleOutput, error) {
	return h.usecase.DeployTemplate(ctx, id)
}

func (h CLIHandler) Schedule(ctx context.Context) (trackerdto.ScheduleOutput, error) {
	return h.usecase.Schedule(ctx)
}

func (h CLIHandler) Start(ctx context.Context) (trackerdto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Submit(ctx context.Context, token string) error {
	return h.usecase.Submit(ctx, token)
}

func (h CLIHandler) Progress(ctx context.Context) (trackerdto.ProgressOutput, error) {
	return h.usecase.Progress(ctx)
}

func (h CLIHandler) Timeline(ctx context.Context) ([]trackerdto.SegmentOutput, error) {
	return h.usecase.Timeline(ctx)
}

func (h CLIHandler) Wait(ctx context.Context) error {
	return h.usecase.Wait(ctx)
}

func (h CLIHandler) Record(ctx context.Context, name string) (trackerdto.RecordOutput, error) {
	return h.usecase.Record(ctx, trackerdto.RecordInput{Name: name})
}

// PumpCommands submits every non-blank line of r as a command until r is
// exhausted or ctx is done. report, when set, sees each token and the
// outcome of submitting it.
func (h CLIHandler) PumpCommands(ctx context.Context, r io.Reader, report func(token string, err error)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		token := strings.TrimSpace(scanner.Text())
		if token == "" {
			continue
		}
		err := h.usecase.Submit(ctx, token)
		if report != nil {
			report(token, err)
		}
	}
	return scanner.Err()
}
