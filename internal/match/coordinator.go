package match

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"slices"

	"github.com/studyhall/tutormatch/internal/database"
	"github.com/studyhall/tutormatch/internal/queue"
	"github.com/studyhall/tutormatch/internal/stats"
	"github.com/studyhall/tutormatch/internal/types"
	"github.com/teris-io/shortid"
)

var (
	// ErrIncompleteQueueEntry is returned when a queue entry selected for a
	// match is missing fields required to create a session.
	ErrIncompleteQueueEntry = errors.New("queue entry missing required fields")
	// ErrNoActiveSession is returned when session termination finds no ACTIVE
	// session for the given chat room.
	ErrNoActiveSession = errors.New("no active session")
)

const (
	metricActiveClients   = "NumActiveClients"
	metricOnlineTutors    = "NumOnlineTutors"
	metricWaitingStudents = "NumWaitingStudents"
	metricActiveSessions  = "NumActiveSessions"
)

type stopReq struct {
	done chan struct{}
}

// pendingMatch links a tutor to the student they are currently paired with.
// Session termination resolves the counterpart from the tutor id alone.
type pendingMatch struct {
	StudentId   int
	TutorUserId int
	SessionId   int
}

// Coordinator is the matchmaking core. A single Run goroutine owns the
// presence registry and the pending-match map and serializes every inbound
// event (connect, disconnect, enqueue, availability toggle, accept, end), so
// no read-decide-write sequence on matching state can interleave with
// another.
type Coordinator struct {
	log     *log.Logger
	db      database.TutorMatchRepository
	tracker *queue.Tracker
	stats   stats.StatsProvider
	sid     *shortid.Shortid

	clients  map[*Client]struct{}
	userMap  map[int]*Client
	presence *presenceRegistry
	pending  map[int]pendingMatch

	registerChan   chan *Client
	deRegisterChan chan *Client
	eventChan      chan *ClientMessage
	stop           chan stopReq
}

func NewCoordinator(logger *log.Logger, db database.TutorMatchRepository, tracker *queue.Tracker, su stats.StatsProvider) (*Coordinator, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		return nil, err
	}

	mc := &Coordinator{
		log:            logger,
		db:             db,
		tracker:        tracker,
		stats:          su,
		sid:            sid,
		clients:        make(map[*Client]struct{}),
		userMap:        make(map[int]*Client),
		presence:       newPresenceRegistry(),
		pending:        make(map[int]pendingMatch),
		registerChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		eventChan:      make(chan *ClientMessage, 256),
		stop:           make(chan stopReq),
	}

	su.RegisterMetric(metricActiveClients)
	su.RegisterMetric(metricOnlineTutors)
	su.RegisterMetric(metricWaitingStudents)
	su.RegisterMetric(metricActiveSessions)

	return mc, nil
}

func (mc *Coordinator) Run() {
	for {
		select {
		case client := <-mc.registerChan:
			mc.log.Printf("adding connection from %q", client.user.Username)
			mc.addClient(client)
		case client := <-mc.deRegisterChan:
			mc.log.Printf("removing connection from %q", client.user.Username)
			mc.handleDisconnect(client)
		case msg := <-mc.eventChan:
			mc.handleEvent(msg)
		case req := <-mc.stop:
			mc.log.Println("shutting down coordinator")
			for c := range mc.clients {
				c.stopClient()
			}
			close(req.done)
			return
		}
	}
}

func (mc *Coordinator) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	select {
	case mc.stop <- stopReq{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RegisterClient hands a freshly upgraded connection to the event loop.
func (mc *Coordinator) RegisterClient(c *Client) {
	mc.registerChan <- c
}

func (mc *Coordinator) addClient(c *Client) {
	mc.clients[c] = struct{}{}
	mc.userMap[c.user.Id] = c
	mc.stats.Incr(metricActiveClients)
}

func (mc *Coordinator) handleEvent(msg *ClientMessage) {
	if msg.client == nil {
		mc.log.Println("dropping event with no client")
		return
	}

	switch {
	case msg.TutorAvailable != nil:
		mc.handleTutorAvailable(msg)
	case msg.Enqueue != nil:
		mc.handleEnqueue(msg)
	case msg.CancelEnqueue != nil:
		mc.handleCancelEnqueue(msg)
	case msg.AcceptMatch != nil:
		mc.handleAcceptMatch(msg)
	case msg.EndSession != nil:
		mc.handleEndSession(msg)
	default:
		msg.client.queueMessage(ErrInvalidMessage(msg.Id))
	}
}

// handleTutorAvailable toggles a tutor in or out of the available pool. The
// durable record is written before the in-memory registry changes so a store
// failure leaves the registry untouched.
func (mc *Coordinator) handleTutorAvailable(msg *ClientMessage) {
	tutor, err := mc.db.GetTutorByUserId(msg.UserId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg.client.queueMessage(ErrNotFound(msg.Id, "tutor not found"))
		} else {
			mc.log.Println("GetTutorByUserId:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	if !msg.TutorAvailable.IsAvailable {
		updated, err := mc.db.UpdateTutorStatus(tutor.Id, true, false)
		if err != nil {
			mc.log.Println("UpdateTutorStatus:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
			return
		}

		if mc.presence.markTutorUnavailable(tutor.Id) {
			mc.stats.Decr(metricOnlineTutors)
			mc.broadcast(tutorStatusMessage(TutorStatusDecrement))
		}

		msg.client.queueMessage(NoErrOK(msg.Id, tutorToApi(updated)))
		return
	}

	updated, err := mc.db.UpdateTutorStatus(tutor.Id, true, true)
	if err != nil {
		mc.log.Println("UpdateTutorStatus:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if mc.presence.markTutorAvailable(tutor.Id, msg.client) {
		mc.stats.Incr(metricOnlineTutors)
		mc.broadcast(tutorStatusMessage(TutorStatusIncrement))
	}

	msg.client.queueMessage(NoErrOK(msg.Id, tutorToApi(updated)))

	mc.matchTutor(updated, msg.client)
}

// matchTutor pairs a newly available tutor with the earliest-created WAITING
// student, if one exists.
func (mc *Coordinator) matchTutor(tutor database.Tutor, tc *Client) {
	entry, ok, err := mc.tracker.NextWaiting()
	if err != nil {
		mc.log.Println("NextWaiting:", err)
		return
	}
	if !ok {
		return
	}

	sess, err := mc.createSession(tutor, entry)
	if err != nil {
		mc.log.Printf("create session for tutor %d: %v", tutor.Id, err)
		return
	}

	mc.finalizeMatch(tutor, tc, entry, sess)
}

// handleEnqueue creates a WAITING entry for the student and offers it to the
// longest-available tutor.
func (mc *Coordinator) handleEnqueue(msg *ClientMessage) {
	eq := msg.Enqueue
	entry, err := mc.tracker.Enqueue(msg.UserId, eq.Subject, eq.Urgency, eq.Description, eq.EstimatedTime)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrDuplicateEntry):
			msg.client.queueMessage(ErrConflict(msg.Id, "student already in queue"))
		case errors.Is(err, queue.ErrInvalidEntry):
			msg.client.queueMessage(ErrBadRequest(msg.Id, "invalid queue entry"))
		default:
			mc.log.Println("enqueue:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	mc.presence.markStudentWaiting(entry.StudentId, msg.client)
	mc.stats.Incr(metricWaitingStudents)

	msg.client.queueMessage(NoErrOK(msg.Id, queueEntryToApi(entry)))

	mc.offerMatch(entry, msg.client.user)
}

// offerMatch sends a student_waiting offer to the longest-available tutor and
// parks that tutor in the matching set until they accept or disconnect.
func (mc *Coordinator) offerMatch(entry database.QueueEntry, student types.User) {
	tutorId, tc, ok := mc.presence.nextAvailableTutor()
	if !ok {
		return
	}

	tutor, err := mc.db.GetTutorById(tutorId)
	if err != nil {
		mc.log.Println("GetTutorById:", err)
		return
	}

	mc.presence.markTutorMatching(tutorId)

	tc.queueMessage(&ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			StudentWaiting: &StudentWaiting{
				Tutor:      tutorToApi(tutor),
				Student:    student,
				QueueEntry: queueEntryToApi(entry),
			},
		},
	})
}

func (mc *Coordinator) handleCancelEnqueue(msg *ClientMessage) {
	if err := mc.tracker.Cancel(msg.UserId); err != nil {
		mc.log.Println("cancel enqueue:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if mc.presence.removeStudent(msg.UserId) {
		mc.stats.Decr(metricWaitingStudents)
	}

	msg.client.queueMessage(NoErrOK(msg.Id, nil))
}

// handleAcceptMatch is the tutor's explicit confirmation of a student_waiting
// offer.
func (mc *Coordinator) handleAcceptMatch(msg *ClientMessage) {
	tutor, err := mc.db.GetTutorByUserId(msg.UserId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg.client.queueMessage(ErrNotFound(msg.Id, "tutor not found"))
		} else {
			mc.log.Println("GetTutorByUserId:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	entry, err := mc.db.GetQueueEntryById(msg.AcceptMatch.QueueEntryId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg.client.queueMessage(ErrNotFound(msg.Id, "queue entry not found"))
		} else {
			mc.log.Println("GetQueueEntryById:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		mc.presence.returnTutorToPool(tutor.Id)
		return
	}

	if entry.Status != types.QueueStatusWaiting {
		// the student cancelled or disconnected between offer and accept
		msg.client.queueMessage(ErrConflict(msg.Id, "queue entry no longer waiting"))
		mc.presence.returnTutorToPool(tutor.Id)
		return
	}

	sess, err := mc.createSession(tutor, entry)
	if err != nil {
		if errors.Is(err, ErrIncompleteQueueEntry) {
			msg.client.queueMessage(ErrBadRequest(msg.Id, err.Error()))
		} else {
			mc.log.Println("createSession:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		mc.presence.returnTutorToPool(tutor.Id)
		return
	}

	msg.client.queueMessage(NoErrOK(msg.Id, sessionToApi(sess)))
	mc.finalizeMatch(tutor, msg.client, entry, sess)
}

// createSession turns a WAITING entry into an ACTIVE session with its own
// private chat room. A stale ACTIVE session for either party is deleted
// first.
func (mc *Coordinator) createSession(tutor database.Tutor, entry database.QueueEntry) (database.Session, error) {
	if entry.Subject == "" || !entry.Urgency.Valid() || entry.Description == "" || entry.EstimatedTime <= 0 {
		return database.Session{}, ErrIncompleteQueueEntry
	}

	if err := mc.tracker.MarkInProgress(entry.Id); err != nil {
		return database.Session{}, err
	}

	externalId, err := mc.sid.Generate()
	if err != nil {
		return database.Session{}, err
	}

	room, err := mc.db.CreateChatRoom(database.CreateChatRoomParams{
		ExternalId: externalId,
		Name:       entry.Subject + " session",
		IsPrivate:  true,
	})
	if err != nil {
		return database.Session{}, err
	}

	// the room only survives if session creation completes
	dropRoom := func() {
		if err := mc.db.DeleteChatRoom(room.Id); err != nil {
			mc.log.Println("DeleteChatRoom:", err)
		}
	}

	for _, lookup := range []func() (database.Session, error){
		func() (database.Session, error) { return mc.db.GetActiveSessionForStudent(entry.StudentId) },
		func() (database.Session, error) { return mc.db.GetActiveSessionForTutor(tutor.Id) },
	} {
		stale, err := lookup()
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			dropRoom()
			return database.Session{}, err
		}

		mc.log.Printf("deleting stale active session %d", stale.Id)
		if err := mc.db.DeleteSession(stale.Id); err != nil {
			dropRoom()
			return database.Session{}, err
		}
	}

	sess, err := mc.db.CreateSession(database.CreateSessionParams{
		Name:          entry.Subject + " session",
		StudentId:     entry.StudentId,
		TutorId:       tutor.Id,
		Subject:       entry.Subject,
		Urgency:       entry.Urgency,
		Description:   entry.Description,
		EstimatedTime: entry.EstimatedTime,
		ChatRoomId:    room.Id,
	})
	if err != nil {
		dropRoom()
		return database.Session{}, err
	}

	sess.ChatRoomExtId = room.ExternalId
	return sess, nil
}

// finalizeMatch records the pending match, clears both parties from the
// presence registry and notifies their connections. Notification is best
// effort: a party that vanished between offer and accept is logged, never
// retried.
func (mc *Coordinator) finalizeMatch(tutor database.Tutor, tc *Client, entry database.QueueEntry, sess database.Session) {
	mc.pending[tutor.Id] = pendingMatch{
		StudentId:   entry.StudentId,
		TutorUserId: tutor.UserId,
		SessionId:   sess.Id,
	}

	mc.presence.markTutorUnavailable(tutor.Id)
	if mc.presence.removeStudent(entry.StudentId) {
		mc.stats.Decr(metricWaitingStudents)
	}

	if _, err := mc.db.UpdateTutorStatus(tutor.Id, true, false); err != nil {
		mc.log.Println("UpdateTutorStatus:", err)
	}

	mc.stats.Incr(metricActiveSessions)

	note := &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			SessionCreated: &SessionCreated{
				Success: true,
				Session: sessionToApi(sess),
			},
		},
	}

	if tc != nil {
		tc.queueMessage(note)
	} else {
		mc.log.Printf("no connection for tutor %d at session create", tutor.Id)
	}

	if sc, ok := mc.userMap[entry.StudentId]; ok {
		sc.queueMessage(note)
	} else {
		mc.log.Printf("no connection for student %d at session create", entry.StudentId)
	}
}

// handleDisconnect cleans up every trace of a dropped connection: tutors go
// durably offline whether they were in the pool or mid-session, waiting
// students are cancelled out of the queue. A session stays ACTIVE until an
// explicit end_session.
func (mc *Coordinator) handleDisconnect(c *Client) {
	if _, ok := mc.clients[c]; !ok {
		return
	}

	delete(mc.clients, c)
	if mc.userMap[c.user.Id] == c {
		delete(mc.userMap, c.user.Id)
	}
	mc.stats.Decr(metricActiveClients)

	tutorIds, studentIds := mc.presence.removeConn(c)

	for _, tutorId := range tutorIds {
		if _, err := mc.db.UpdateTutorStatus(tutorId, false, false); err != nil {
			mc.log.Println("UpdateTutorStatus:", err)
		}
		mc.stats.Decr(metricOnlineTutors)
		mc.broadcast(tutorStatusMessage(TutorStatusDecrement))
	}

	// a tutor matched into a session was cleared from the registry at match
	// time, so the sweep above cannot see them
	for tutorId, pm := range mc.pending {
		if pm.TutorUserId != c.user.Id {
			continue
		}

		mc.log.Printf("tutor %d disconnected during session %d", tutorId, pm.SessionId)
		delete(mc.pending, tutorId)

		if slices.Contains(tutorIds, tutorId) {
			continue
		}

		if _, err := mc.db.UpdateTutorStatus(tutorId, false, false); err != nil {
			mc.log.Println("UpdateTutorStatus:", err)
		}
		mc.stats.Decr(metricOnlineTutors)
		mc.broadcast(tutorStatusMessage(TutorStatusDecrement))
	}

	for _, studentId := range studentIds {
		if err := mc.tracker.Cancel(studentId); err != nil {
			mc.log.Println("cancel entries on disconnect:", err)
		}
		mc.stats.Decr(metricWaitingStudents)
	}
}

func (mc *Coordinator) broadcast(msg *ServerMessage) {
	for client := range mc.clients {
		if client == msg.SkipClient {
			continue
		}

		client.queueMessage(msg)
	}
}

func tutorStatusMessage(statusType string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			TutorStatus: &TutorStatus{Type: statusType},
		},
	}
}

func tutorToApi(t database.Tutor) types.Tutor {
	return types.Tutor{
		Id:        t.Id,
		UserId:    t.UserId,
		Online:    t.Online,
		Available: t.Available,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func queueEntryToApi(e database.QueueEntry) types.QueueEntry {
	return types.QueueEntry{
		Id:            e.Id,
		StudentId:     e.StudentId,
		Subject:       e.Subject,
		Urgency:       e.Urgency,
		Description:   e.Description,
		EstimatedTime: e.EstimatedTime,
		Status:        e.Status,
		Position:      e.Position,
		CreatedAt:     e.CreatedAt,
	}
}

func sessionToApi(s database.Session) types.Session {
	return types.Session{
		Id:            s.Id,
		Name:          s.Name,
		StudentId:     s.StudentId,
		TutorId:       s.TutorId,
		Subject:       s.Subject,
		Urgency:       s.Urgency,
		Description:   s.Description,
		EstimatedTime: s.EstimatedTime,
		Status:        s.Status,
		ChatRoomId:    s.ChatRoomId,
		ChatRoomExtId: s.ChatRoomExtId,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
	}
}
