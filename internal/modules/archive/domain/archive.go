package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "prodman/internal/platform/errors"
)

const (
	SchemaVersion = 1
	DateLayout    = "2006-01-02"
)

// Block is the stored form of a schedule block. Length and Dinger are minutes.
type Block struct {
	Task     string  `json:"task"`
	Length   float64 `json:"length"`
	Focus    string  `json:"focus,omitempty"`
	Notes    string  `json:"notes,omitempty"`
	Hassler  bool    `json:"hassler,omitempty"`
	Applause bool    `json:"applause,omitempty"`
	Dinger   float64 `json:"dinger,omitempty"`
}

// Segment is one closed span of a recorded timeline.
type Segment struct {
	Task   string    `json:"task"`
	Focus  string    `json:"focus,omitempty"`
	Notes  string    `json:"notes,omitempty"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Length float64   `json:"length"`
}

type Template struct {
	ID     string
	Blocks []Block
}

type SaveResult string

const (
	Saved       SaveResult = "saved"
	Overwritten SaveResult = "overwritten"
	InvalidName SaveResult = "invalid_name"
)

// ValidateTemplateID rejects blank ids and ids carrying quote characters.
func ValidateTemplateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("template id is blank: %w", apperrors.ErrInvalidName)
	}
	if strings.ContainsAny(id, `'"`) {
		return fmt.Errorf("template id %q contains quotes: %w", id, apperrors.ErrInvalidName)
	}
	return nil
}

func ValidateBlocks(blocks []Block) error {
	if len(blocks) == 0 {
		return fmt.Errorf("schedule has no blocks: %w", apperrors.ErrInvalidInput)
	}
	for i, b := range blocks {
		if strings.TrimSpace(b.Task) == "" {
			return fmt.Errorf("block %d has no task: %w", i, apperrors.ErrInvalidInput)
		}
		if b.Length <= 0 {
			return fmt.Errorf("block %d length must be positive: %w", i, apperrors.ErrInvalidInput)
		}
	}
	return nil
}

// HistoryKey addresses a recorded session. IDs restart at zero every date.
type HistoryKey struct {
	Date string
	ID   int
}

func (k HistoryKey) String() string { return fmt.Sprintf("%s#%d", k.Date, k.ID) }

func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", raw, errors.Join(apperrors.ErrInvalidInput, err))
	}
	return t, nil
}

type HistoryEntry struct {
	Key        HistoryKey
	Name       string
	RunID      string
	RecordedAt time.Time
	Timeline   []Segment
	Schedule   []Block
}
