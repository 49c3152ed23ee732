package match

import (
	"net/http"
	"time"

	"github.com/studyhall/tutormatch/internal/types"
)

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ClientMessage is an inbound frame from a connection. Exactly one of the
// action fields is expected to be set.
type ClientMessage struct {
	BaseMessage
	TutorAvailable *TutorAvailable `json:"tutor_available,omitempty"`
	Enqueue        *Enqueue        `json:"enqueue,omitempty"`
	CancelEnqueue  *CancelEnqueue  `json:"cancel_enqueue,omitempty"`
	AcceptMatch    *AcceptMatch    `json:"accept_match,omitempty"`
	EndSession     *EndSession     `json:"end_session,omitempty"`
	UserId         int             `json:"-"`
	client         *Client         `json:"-"`
}

type TutorAvailable struct {
	IsAvailable bool `json:"is_available"`
}

type Enqueue struct {
	Subject       string        `json:"subject"`
	Urgency       types.Urgency `json:"urgency"`
	Description   string        `json:"description"`
	EstimatedTime int           `json:"estimated_time"`
}

type CancelEnqueue struct{}

type AcceptMatch struct {
	StudentId    int `json:"student_id"`
	QueueEntryId int `json:"queue_entry_id"`
}

type EndSession struct {
	ChatRoomId string `json:"chat_room_id"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response     `json:"response,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	SkipClient   *Client       `json:"-"`
}

type Response struct {
	ResponseCode int    `json:"response_code"`
	Error        string `json:"error,omitempty"`
	Data         any    `json:"data,omitempty"`
}

type Notification struct {
	StudentWaiting *StudentWaiting `json:"student_waiting,omitempty"`
	SessionCreated *SessionCreated `json:"session_created,omitempty"`
	SessionEnded   *SessionEnded   `json:"session_ended,omitempty"`
	TutorStatus    *TutorStatus    `json:"tutor_status,omitempty"`
}

// StudentWaiting is the match offer sent to an available tutor.
type StudentWaiting struct {
	Tutor      types.Tutor      `json:"tutor"`
	Student    types.User       `json:"student"`
	QueueEntry types.QueueEntry `json:"queue_entry"`
}

type SessionCreated struct {
	Success bool          `json:"success"`
	Session types.Session `json:"session"`
}

type SessionEnded struct {
	Success    bool   `json:"success"`
	NavigateTo string `json:"navigate_to"`
}

const (
	TutorStatusIncrement = "increment"
	TutorStatusDecrement = "decrement"
)

// TutorStatus is broadcast to every connection when the online tutor count
// changes.
type TutorStatus struct {
	Type string `json:"type"`
}

func NoErrOK(id int, data any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrBadRequest(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        reason,
		},
	}
}

func ErrNotFound(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusNotFound,
			Error:        reason,
		},
	}
}

func ErrConflict(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusConflict,
			Error:        reason,
		},
	}
}

func ErrForbidden(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusForbidden,
			Error:        "forbidden",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "service unavailable",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
