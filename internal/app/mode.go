package service

import (
	"fmt"
	"strings"

	"github.com/okian/ekiden/internal/domain/history"
)

// Mode selects what a tick persists.
type Mode string

const (
	// ModeRealtime publishes the snapshot, histories, records and ledger.
	ModeRealtime Mode = "realtime"
	// ModeCommit persists the day's race state, records and final histories.
	ModeCommit Mode = "commit"
	// ModePreview computes and logs without writing anything.
	ModePreview Mode = "preview"
)

// ParseMode accepts realtime, commit or preview.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRealtime, ModeCommit, ModePreview:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) historyMode() history.Mode {
	if m == ModeCommit {
		return history.Commit
	}
	return history.Realtime
}
