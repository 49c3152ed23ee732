package database

import (
	"time"

	"github.com/studyhall/tutormatch/internal/types"
)

const (
	tutorCols      = "id, user_id, online, available, created_at, updated_at"
	queueEntryCols = "id, student_id, subject, urgency, description, estimated_time, status, position, created_at"
	sessionCols    = "s.id, s.name, s.student_id, s.tutor_id, s.subject, s.urgency, s.description, " +
		"s.estimated_time, s.status, s.chat_room_id, c.external_id, s.start_time, s.end_time"
	sessionJoin = "FROM sessions s JOIN chat_rooms c ON c.id = s.chat_room_id"
)

func (db *PgTutorMatchRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, username, email, created_at, updated_at",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTutorMatchRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTutorMatchRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, created_at, updated_at FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

func (db *PgTutorMatchRepository) CreateTutor(userId int) (Tutor, error) {
	res := db.conn.QueryRow(
		"INSERT INTO tutors (user_id, online, available, created_at, updated_at) "+
			"VALUES ($1, false, false, $2, $2) RETURNING "+tutorCols,
		userId,
		time.Now().UTC(),
	)

	return scanTutorRow(res)
}

func (db *PgTutorMatchRepository) GetTutorById(tutorId int) (Tutor, error) {
	row := db.conn.QueryRow(
		"SELECT "+tutorCols+" FROM tutors WHERE id = $1 LIMIT 1",
		tutorId,
	)

	return scanTutorRow(row)
}

func (db *PgTutorMatchRepository) GetTutorByUserId(userId int) (Tutor, error) {
	row := db.conn.QueryRow(
		"SELECT "+tutorCols+" FROM tutors WHERE user_id = $1 LIMIT 1",
		userId,
	)

	return scanTutorRow(row)
}

func (db *PgTutorMatchRepository) UpdateTutorStatus(tutorId int, online, available bool) (Tutor, error) {
	res := db.conn.QueryRow(
		"UPDATE tutors SET online = $2, available = $3, updated_at = $4 "+
			"WHERE id = $1 RETURNING "+tutorCols,
		tutorId,
		online,
		available,
		time.Now().UTC(),
	)

	return scanTutorRow(res)
}

func scanTutorRow(row rowScanner) (Tutor, error) {
	var t Tutor
	err := row.Scan(
		&t.Id,
		&t.UserId,
		&t.Online,
		&t.Available,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	return t, err
}

func (db *PgTutorMatchRepository) CreateQueueEntry(params CreateQueueEntryParams) (QueueEntry, error) {
	res := db.conn.QueryRow(
		"INSERT INTO queue_entries (student_id, subject, urgency, description, estimated_time, status, position, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING "+queueEntryCols,
		params.StudentId,
		params.Subject,
		params.Urgency,
		params.Description,
		params.EstimatedTime,
		types.QueueStatusWaiting,
		params.Position,
		time.Now().UTC(),
	)

	return scanQueueEntryRow(res)
}

func (db *PgTutorMatchRepository) GetQueueEntryById(entryId int) (QueueEntry, error) {
	row := db.conn.QueryRow(
		"SELECT "+queueEntryCols+" FROM queue_entries WHERE id = $1 LIMIT 1",
		entryId,
	)

	return scanQueueEntryRow(row)
}

func (db *PgTutorMatchRepository) GetActiveQueueEntryForStudent(studentId int) (QueueEntry, error) {
	row := db.conn.QueryRow(
		"SELECT "+queueEntryCols+" FROM queue_entries "+
			"WHERE student_id = $1 AND status IN ($2, $3) ORDER BY created_at ASC LIMIT 1",
		studentId,
		types.QueueStatusWaiting,
		types.QueueStatusInProgress,
	)

	return scanQueueEntryRow(row)
}

func (db *PgTutorMatchRepository) GetInProgressQueueEntryForStudent(studentId int) (QueueEntry, error) {
	row := db.conn.QueryRow(
		"SELECT "+queueEntryCols+" FROM queue_entries "+
			"WHERE student_id = $1 AND status = $2 ORDER BY created_at ASC LIMIT 1",
		studentId,
		types.QueueStatusInProgress,
	)

	return scanQueueEntryRow(row)
}

func (db *PgTutorMatchRepository) ListWaitingQueueEntries() ([]QueueEntry, error) {
	rows, err := db.conn.Query(
		"SELECT "+queueEntryCols+" FROM queue_entries "+
			"WHERE status = $1 ORDER BY created_at ASC",
		types.QueueStatusWaiting,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		var e QueueEntry
		if err = rows.Scan(&e.Id, &e.StudentId, &e.Subject, &e.Urgency, &e.Description,
			&e.EstimatedTime, &e.Status, &e.Position, &e.CreatedAt); err != nil {
			break
		}

		entries = append(entries, e)
	}
	return entries, err
}

func (db *PgTutorMatchRepository) CountWaitingQueueEntries() (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM queue_entries WHERE status = $1",
		types.QueueStatusWaiting,
	)

	var count int
	err := row.Scan(&count)
	return count, err
}

func (db *PgTutorMatchRepository) UpdateQueueEntryStatus(entryId int, status types.QueueStatus) error {
	_, err := db.conn.Exec(
		"UPDATE queue_entries SET status = $2, updated_at = $3 WHERE id = $1",
		entryId,
		status,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTutorMatchRepository) CancelWaitingQueueEntries(studentId int) error {
	_, err := db.conn.Exec(
		"UPDATE queue_entries SET status = $3, updated_at = $4 WHERE student_id = $1 AND status = $2",
		studentId,
		types.QueueStatusWaiting,
		types.QueueStatusCancelled,
		time.Now().UTC(),
	)

	return err
}

// RecomputeWaitingPositions rewrites position for all WAITING entries so they
// form a contiguous sequence starting at 1, ordered by created_at. Runs as a
// single statement so it cannot interleave with a concurrent recompute.
func (db *PgTutorMatchRepository) RecomputeWaitingPositions() error {
	_, err := db.conn.Exec(
		`UPDATE queue_entries q SET position = ranked.rn, updated_at = $2
			FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY created_at ASC) AS rn
				FROM queue_entries WHERE status = $1
			) ranked
			WHERE q.id = ranked.id`,
		types.QueueStatusWaiting,
		time.Now().UTC(),
	)

	return err
}

func (db *PgTutorMatchRepository) ListQueueEntriesForStudent(studentId int) ([]QueueEntry, error) {
	rows, err := db.conn.Query(
		"SELECT "+queueEntryCols+" FROM queue_entries "+
			"WHERE student_id = $1 ORDER BY created_at DESC",
		studentId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []QueueEntry
	for rows.Next() {
		var e QueueEntry
		if err = rows.Scan(&e.Id, &e.StudentId, &e.Subject, &e.Urgency, &e.Description,
			&e.EstimatedTime, &e.Status, &e.Position, &e.CreatedAt); err != nil {
			break
		}

		entries = append(entries, e)
	}
	return entries, err
}

func (db *PgTutorMatchRepository) CreateChatRoom(params CreateChatRoomParams) (ChatRoom, error) {
	res := db.conn.QueryRow(
		"INSERT INTO chat_rooms (external_id, name, is_private, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, external_id, name, is_private, created_at",
		params.ExternalId,
		params.Name,
		params.IsPrivate,
		time.Now().UTC(),
	)

	var room ChatRoom
	err := res.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.IsPrivate,
		&room.CreatedAt,
	)

	return room, err
}

func (db *PgTutorMatchRepository) GetChatRoomByExternalId(externalId string) (ChatRoom, error) {
	row := db.conn.QueryRow(
		"SELECT id, external_id, name, is_private, created_at FROM chat_rooms "+
			"WHERE external_id = $1 LIMIT 1",
		externalId,
	)

	var room ChatRoom
	err := row.Scan(
		&room.Id,
		&room.ExternalId,
		&room.Name,
		&room.IsPrivate,
		&room.CreatedAt,
	)

	return room, err
}

func (db *PgTutorMatchRepository) DeleteChatRoom(roomId int) error {
	_, err := db.conn.Exec("DELETE FROM chat_rooms WHERE id = $1", roomId)

	return err
}

func (db *PgTutorMatchRepository) CreateSession(params CreateSessionParams) (Session, error) {
	res := db.conn.QueryRow(
		"INSERT INTO sessions (name, student_id, tutor_id, subject, urgency, description, estimated_time, status, chat_room_id, start_time) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, start_time",
		params.Name,
		params.StudentId,
		params.TutorId,
		params.Subject,
		params.Urgency,
		params.Description,
		params.EstimatedTime,
		types.SessionStatusActive,
		params.ChatRoomId,
		time.Now().UTC(),
	)

	sess := Session{
		Name:          params.Name,
		StudentId:     params.StudentId,
		TutorId:       params.TutorId,
		Subject:       params.Subject,
		Urgency:       params.Urgency,
		Description:   params.Description,
		EstimatedTime: params.EstimatedTime,
		Status:        types.SessionStatusActive,
		ChatRoomId:    params.ChatRoomId,
	}
	err := res.Scan(&sess.Id, &sess.StartTime)

	return sess, err
}

func (db *PgTutorMatchRepository) GetActiveSessionForStudent(studentId int) (Session, error) {
	row := db.conn.QueryRow(
		"SELECT "+sessionCols+" "+sessionJoin+" WHERE s.student_id = $1 AND s.status = $2 LIMIT 1",
		studentId,
		types.SessionStatusActive,
	)

	return scanSessionRow(row)
}

func (db *PgTutorMatchRepository) GetActiveSessionForTutor(tutorId int) (Session, error) {
	row := db.conn.QueryRow(
		"SELECT "+sessionCols+" "+sessionJoin+" WHERE s.tutor_id = $1 AND s.status = $2 LIMIT 1",
		tutorId,
		types.SessionStatusActive,
	)

	return scanSessionRow(row)
}

func (db *PgTutorMatchRepository) GetActiveSessionByChatRoom(chatRoomId int) (Session, error) {
	row := db.conn.QueryRow(
		"SELECT "+sessionCols+" "+sessionJoin+" WHERE s.chat_room_id = $1 AND s.status = $2 LIMIT 1",
		chatRoomId,
		types.SessionStatusActive,
	)

	return scanSessionRow(row)
}

func (db *PgTutorMatchRepository) EndSession(sessionId int, endTime time.Time) (Session, error) {
	res := db.conn.QueryRow(
		"UPDATE sessions s SET status = $2, end_time = $3 FROM chat_rooms c "+
			"WHERE s.id = $1 AND c.id = s.chat_room_id RETURNING "+sessionCols,
		sessionId,
		types.SessionStatusEnded,
		endTime,
	)

	return scanSessionRow(res)
}

func (db *PgTutorMatchRepository) DeleteSession(sessionId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	// a private chat room is owned by its session, remove it along with the row
	var chatRoomId int
	var isPrivate bool
	err = tx.QueryRow(
		"SELECT c.id, c.is_private FROM sessions s JOIN chat_rooms c ON c.id = s.chat_room_id WHERE s.id = $1",
		sessionId,
	).Scan(&chatRoomId, &isPrivate)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM sessions WHERE id = $1", sessionId); err != nil {
		return err
	}

	if isPrivate {
		if _, err = tx.Exec("DELETE FROM chat_rooms WHERE id = $1", chatRoomId); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueEntryRow(row rowScanner) (QueueEntry, error) {
	var e QueueEntry
	err := row.Scan(
		&e.Id,
		&e.StudentId,
		&e.Subject,
		&e.Urgency,
		&e.Description,
		&e.EstimatedTime,
		&e.Status,
		&e.Position,
		&e.CreatedAt,
	)

	return e, err
}

func scanSessionRow(row rowScanner) (Session, error) {
	var s Session
	err := row.Scan(
		&s.Id,
		&s.Name,
		&s.StudentId,
		&s.TutorId,
		&s.Subject,
		&s.Urgency,
		&s.Description,
		&s.EstimatedTime,
		&s.Status,
		&s.ChatRoomId,
		&s.ChatRoomExtId,
		&s.StartTime,
		&s.EndTime,
	)

	return s, err
}
