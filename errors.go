package gtcheck

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrNotFound       = errors.New("file not found")
	ErrRecordNotFound = errors.New("review record not found")
	ErrRecordExists   = errors.New("review record already exists")
	ErrConflict       = errors.New("review record was modified concurrently")
	ErrNoCurrentItem  = errors.New("no file is currently presented")
	ErrStaleItem      = errors.New("presented file is no longer pending")
	ErrNotInBucket    = errors.New("file is not in the expected list")
	ErrReserved       = errors.New("review record is reserved")
	ErrNoChanges      = errors.New("repository has no modified ground truth files")
)

// SettingsError reports an invalid repository setting.
type SettingsError struct {
	Field  string
	Reason string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("invalid setting %s: %s", e.Field, e.Reason)
}
