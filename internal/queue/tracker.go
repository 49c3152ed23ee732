package queue

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/studyhall/tutormatch/internal/database"
	"github.com/studyhall/tutormatch/internal/types"
)

var (
	// ErrDuplicateEntry is returned when a student already has a WAITING or
	// IN_PROGRESS entry and tries to enqueue again.
	ErrDuplicateEntry = errors.New("student already has an active queue entry")
	// ErrInvalidEntry is returned when a request is missing required fields.
	ErrInvalidEntry = errors.New("invalid queue entry")
)

// Tracker maintains the ordered waiting list. Positions of WAITING entries
// always form a contiguous sequence starting at 1, ordered by creation time.
type Tracker struct {
	log *log.Logger
	db  database.TutorMatchRepository
}

func NewTracker(logger *log.Logger, db database.TutorMatchRepository) *Tracker {
	return &Tracker{
		log: logger,
		db:  db,
	}
}

// Enqueue creates a WAITING entry for the student at the back of the queue
// and returns it with its position.
func (t *Tracker) Enqueue(studentId int, subject string, urgency types.Urgency, description string, estimatedTime int) (database.QueueEntry, error) {
	if studentId == 0 || subject == "" || !urgency.Valid() || estimatedTime <= 0 {
		return database.QueueEntry{}, ErrInvalidEntry
	}

	_, err := t.db.GetActiveQueueEntryForStudent(studentId)
	if err == nil {
		return database.QueueEntry{}, ErrDuplicateEntry
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return database.QueueEntry{}, fmt.Errorf("lookup active entry: %w", err)
	}

	count, err := t.db.CountWaitingQueueEntries()
	if err != nil {
		return database.QueueEntry{}, fmt.Errorf("count waiting entries: %w", err)
	}

	entry, err := t.db.CreateQueueEntry(database.CreateQueueEntryParams{
		StudentId:     studentId,
		Subject:       subject,
		Urgency:       urgency,
		Description:   description,
		EstimatedTime: estimatedTime,
		Position:      count + 1,
	})
	if err != nil {
		return database.QueueEntry{}, fmt.Errorf("create queue entry: %w", err)
	}

	return entry, nil
}

// Cancel marks all of the student's WAITING entries CANCELLED and closes the
// gap in the remaining positions.
func (t *Tracker) Cancel(studentId int) error {
	if err := t.db.CancelWaitingQueueEntries(studentId); err != nil {
		return fmt.Errorf("cancel waiting entries: %w", err)
	}

	return t.RecomputePositions()
}

// MarkInProgress transitions a WAITING entry to IN_PROGRESS on match
// consumption and recomputes the remaining positions.
func (t *Tracker) MarkInProgress(entryId int) error {
	if err := t.db.UpdateQueueEntryStatus(entryId, types.QueueStatusInProgress); err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}

	return t.RecomputePositions()
}

// Complete transitions the student's IN_PROGRESS entry to COMPLETED on
// session end. No position recompute is needed since IN_PROGRESS entries are
// already excluded from the WAITING ordering.
func (t *Tracker) Complete(studentId int) error {
	entry, err := t.db.GetInProgressQueueEntryForStudent(studentId)
	if err != nil {
		return fmt.Errorf("lookup in-progress entry: %w", err)
	}

	if err := t.db.UpdateQueueEntryStatus(entry.Id, types.QueueStatusCompleted); err != nil {
		return fmt.Errorf("update entry status: %w", err)
	}

	return nil
}

func (t *Tracker) RecomputePositions() error {
	if err := t.db.RecomputeWaitingPositions(); err != nil {
		return fmt.Errorf("recompute positions: %w", err)
	}

	return nil
}

// NextWaiting returns the WAITING entry with the smallest position, if any.
func (t *Tracker) NextWaiting() (database.QueueEntry, bool, error) {
	entries, err := t.db.ListWaitingQueueEntries()
	if err != nil {
		return database.QueueEntry{}, false, fmt.Errorf("list waiting entries: %w", err)
	}

	if len(entries) == 0 {
		return database.QueueEntry{}, false, nil
	}

	return entries[0], true, nil
}

// History returns all of the student's entries, newest first.
func (t *Tracker) History(studentId int) ([]database.QueueEntry, error) {
	return t.db.ListQueueEntriesForStudent(studentId)
}
