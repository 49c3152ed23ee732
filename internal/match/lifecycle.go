package match

import (
	"database/sql"
	"errors"
	"time"

	"github.com/studyhall/tutormatch/internal/types"
)

const sessionEndRedirect = "/dashboard/queue"

// handleEndSession terminates the ACTIVE session on the given chat room and
// restores pre-session state: the tutor goes back to available, the student's
// IN_PROGRESS entry is completed, both parties are notified. A second call
// for the same room finds no ACTIVE session and fails, so termination is
// idempotent in effect.
func (mc *Coordinator) handleEndSession(msg *ClientMessage) {
	room, err := mc.db.GetChatRoomByExternalId(msg.EndSession.ChatRoomId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg.client.queueMessage(ErrNotFound(msg.Id, ErrNoActiveSession.Error()))
		} else {
			mc.log.Println("GetChatRoomByExternalId:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	sess, err := mc.db.GetActiveSessionByChatRoom(room.Id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			msg.client.queueMessage(ErrNotFound(msg.Id, ErrNoActiveSession.Error()))
		} else {
			mc.log.Println("GetActiveSessionByChatRoom:", err)
			msg.client.queueMessage(ErrInternalError(msg.Id))
		}
		return
	}

	tutor, err := mc.db.GetTutorById(sess.TutorId)
	if err != nil {
		mc.log.Println("GetTutorById:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if msg.UserId != sess.StudentId && msg.UserId != tutor.UserId {
		msg.client.queueMessage(ErrForbidden(msg.Id))
		return
	}

	if _, err := mc.db.UpdateTutorStatus(sess.TutorId, true, true); err != nil {
		mc.log.Println("UpdateTutorStatus:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	ended, err := mc.db.EndSession(sess.Id, time.Now().UTC())
	if err != nil {
		mc.log.Println("EndSession:", err)
		msg.client.queueMessage(ErrInternalError(msg.Id))
		return
	}

	if err := mc.tracker.Complete(sess.StudentId); err != nil {
		// already-completed bookkeeping is not fatal to termination
		mc.log.Println("complete queue entry:", err)
	}

	mc.stats.Decr(metricActiveSessions)
	msg.client.queueMessage(NoErrOK(msg.Id, sessionToApi(ended)))

	note := &ServerMessage{
		BaseMessage: BaseMessage{Timestamp: Now()},
		Notification: &Notification{
			SessionEnded: &SessionEnded{
				Success:    true,
				NavigateTo: sessionEndRedirect,
			},
		},
	}

	// the pending match resolves which student was paired with this tutor;
	// notification is best effort for parties that already dropped
	pm, hadPending := mc.pending[sess.TutorId]
	delete(mc.pending, sess.TutorId)

	studentId := sess.StudentId
	if hadPending {
		studentId = pm.StudentId
	}

	if tc, ok := mc.userMap[tutor.UserId]; ok {
		tc.queueMessage(note)
	} else {
		mc.log.Printf("no connection for tutor %d at session end", tutor.Id)
	}

	if sc, ok := mc.userMap[studentId]; ok {
		sc.queueMessage(note)
	} else {
		mc.log.Printf("no connection for student %d at session end", studentId)
	}

	// a tutor whose connection is still live rejoins the pool and is offered
	// the next waiting student, keeping the count broadcasts untouched since
	// they never went offline
	if tc, ok := mc.userMap[tutor.UserId]; ok {
		mc.presence.markTutorAvailable(tutor.Id, tc)

		entry, found, err := mc.tracker.NextWaiting()
		if err != nil {
			mc.log.Println("NextWaiting:", err)
			return
		}
		if !found {
			return
		}

		var student types.User
		if sc, ok := mc.userMap[entry.StudentId]; ok {
			student = sc.user
		}

		mc.offerMatch(entry, student)
	}
}
