package out

import "prodman/internal/modules/tracker/domain"

// CuePlayer receives cues after the engine has released its lock.
// Implementations must not block the caller.
type CuePlayer interface {
	Play(cue domain.Cue)
}
