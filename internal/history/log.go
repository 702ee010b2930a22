// Package history exposes the append-only settings audit trail: filtered
// queries, aggregate stats and restore-to-prior-value.
package history

import (
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	changectl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/change"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// ErrRestoreOfRestore is returned when restore-to-value targets a record that
// itself came from a restore. The structured origin marker is the loop guard;
// restoring a direct edit or an import is fine, chaining restores is not.
var ErrRestoreOfRestore = errors.New("cannot restore a restore-originated change")

// ErrRestoreOfRedacted is returned when restore-to-value targets a record of
// an encrypted setting; the audit trail only holds the redaction marker, not
// a value that could be applied.
var ErrRestoreOfRedacted = errors.New("cannot restore an encrypted value from the audit trail")

// Filter narrows history queries. Date bounds are interpreted in the
// configured audit timezone and are inclusive on both ends.
type Filter struct {
	Search        string
	Category      string
	UserID        string
	ImportantOnly bool
	DateFrom      string // "2006-01-02", inclusive start of day
	DateTo        string // "2006-01-02", inclusive end of day
}

// Stats re-exports the aggregate counts of the storage layer.
type Stats = changectl.Stats

// Log queries the audit trail and restores prior values.
type Log struct {
	svc *settings.Service
	loc *time.Location
}

// NewLog creates a history log. loc interprets date-range filters; nil means UTC.
func NewLog(svc *settings.Service, loc *time.Location) *Log {
	if loc == nil {
		loc = time.UTC
	}

	return &Log{
		svc: svc,
		loc: loc,
	}
}

// Record appends one change record directly. The settings mutation path
// appends its own records; this exists for collaborators that mutate outside
// gorm (none today) and for tests. Persistence failures propagate.
func (l *Log) Record(db *gorm.DB, rec *models.ChangeRecord) error {
	_, err := changectl.Append(db, rec)

	return pkgerrors.Wrap(err, "failed to append change record")
}

// Query returns one page of change records matching the filter, newest first.
func (l *Log) Query(db *gorm.DB, filter Filter, page, perPage int) ([]models.ChangeRecord, int64, error) {
	ctlFilter, err := l.controllerFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	return changectl.Query(db, ctlFilter, page, perPage)
}

// ComputeStats aggregates counts consistent with Query's filter.
func (l *Log) ComputeStats(db *gorm.DB, filter Filter) (*Stats, error) {
	ctlFilter, err := l.controllerFilter(filter)
	if err != nil {
		return nil, err
	}

	return changectl.ComputeStats(db, ctlFilter)
}

// RestoreToValue applies the old value of a change record as a new mutation.
// The new record is marked with the restore origin, which is exactly what the
// loop guard checks: a restore-originated record cannot be restored again.
func (l *Log) RestoreToValue(db *gorm.DB, changeID uint64, actor settings.Actor) (*models.ChangeRecord, error) {
	rec, err := changectl.GetByID(db, changeID)
	if err != nil {
		return nil, err
	}

	if rec.Origin == models.OriginRestore {
		return nil, pkgerrors.Wrapf(ErrRestoreOfRestore, "change %d", changeID)
	}

	if string(rec.OldValue) == settings.RedactedValue || string(rec.NewValue) == settings.RedactedValue {
		return nil, pkgerrors.Wrapf(ErrRestoreOfRedacted, "change %d", changeID)
	}

	return l.svc.Apply(db, settings.ChangeCommand{
		Key:      rec.SettingKey,
		NewValue: string(rec.OldValue),
		Actor:    actor,
		Reason:   fmt.Sprintf("restored to value prior to change #%d", rec.ID),
		Origin:   models.OriginRestore,
	})
}

// controllerFilter resolves date strings into inclusive bounds in the audit
// timezone.
func (l *Log) controllerFilter(filter Filter) (changectl.Filter, error) {
	out := changectl.Filter{
		Search:        filter.Search,
		Category:      filter.Category,
		UserID:        filter.UserID,
		ImportantOnly: filter.ImportantOnly,
	}

	if filter.DateFrom != "" {
		from, err := time.ParseInLocation("2006-01-02", filter.DateFrom, l.loc)
		if err != nil {
			return out, pkgerrors.Wrap(err, "invalid dateFrom")
		}

		out.DateFrom = &from
	}

	if filter.DateTo != "" {
		to, err := time.ParseInLocation("2006-01-02", filter.DateTo, l.loc)
		if err != nil {
			return out, pkgerrors.Wrap(err, "invalid dateTo")
		}

		// inclusive end of day
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		out.DateTo = &end
	}

	return out, nil
}
