package match

// presenceRegistry tracks which tutors and students currently have a live
// connection and are not mid-session. It is owned exclusively by the
// Coordinator's event loop and must never be touched from another goroutine.
type presenceRegistry struct {
	availableTutors map[int]*Client
	// tutorOrder preserves the order tutors became available so selection is
	// strictly first-available-first-offered.
	tutorOrder      []int
	matchingTutors  map[int]*Client
	waitingStudents map[int]*Client
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{
		availableTutors: make(map[int]*Client),
		matchingTutors:  make(map[int]*Client),
		waitingStudents: make(map[int]*Client),
	}
}

// markTutorAvailable registers or overwrites the tutor's connection.
// Idempotent: a tutor already in the pool keeps their place in line.
// Returns true if the tutor was not previously registered.
func (p *presenceRegistry) markTutorAvailable(tutorId int, c *Client) bool {
	if _, ok := p.matchingTutors[tutorId]; ok {
		// an offer is in flight, just refresh the connection
		p.matchingTutors[tutorId] = c
		return false
	}

	_, known := p.availableTutors[tutorId]
	p.availableTutors[tutorId] = c
	if !known {
		p.tutorOrder = append(p.tutorOrder, tutorId)
	}
	return !known
}

// markTutorMatching moves an available tutor into the matching set so they
// cannot receive a second offer.
func (p *presenceRegistry) markTutorMatching(tutorId int) {
	c, ok := p.availableTutors[tutorId]
	if !ok {
		return
	}

	p.removeFromOrder(tutorId)
	delete(p.availableTutors, tutorId)
	p.matchingTutors[tutorId] = c
}

// markTutorUnavailable removes the tutor from both the available and matching
// sets. Returns true if the tutor was registered.
func (p *presenceRegistry) markTutorUnavailable(tutorId int) bool {
	if _, ok := p.availableTutors[tutorId]; ok {
		p.removeFromOrder(tutorId)
		delete(p.availableTutors, tutorId)
		return true
	}
	if _, ok := p.matchingTutors[tutorId]; ok {
		delete(p.matchingTutors, tutorId)
		return true
	}
	return false
}

// returnTutorToPool demotes a tutor from the matching set back to the
// available pool, at the back of the line.
func (p *presenceRegistry) returnTutorToPool(tutorId int) {
	c, ok := p.matchingTutors[tutorId]
	if !ok {
		return
	}

	delete(p.matchingTutors, tutorId)
	p.availableTutors[tutorId] = c
	p.tutorOrder = append(p.tutorOrder, tutorId)
}

// nextAvailableTutor returns the tutor that has been available the longest.
func (p *presenceRegistry) nextAvailableTutor() (int, *Client, bool) {
	for _, tutorId := range p.tutorOrder {
		if c, ok := p.availableTutors[tutorId]; ok {
			return tutorId, c, true
		}
	}
	return 0, nil, false
}

func (p *presenceRegistry) tutorConn(tutorId int) (*Client, bool) {
	if c, ok := p.availableTutors[tutorId]; ok {
		return c, true
	}
	c, ok := p.matchingTutors[tutorId]
	return c, ok
}

func (p *presenceRegistry) markStudentWaiting(studentId int, c *Client) {
	p.waitingStudents[studentId] = c
}

func (p *presenceRegistry) removeStudent(studentId int) bool {
	if _, ok := p.waitingStudents[studentId]; !ok {
		return false
	}
	delete(p.waitingStudents, studentId)
	return true
}

func (p *presenceRegistry) studentConn(studentId int) (*Client, bool) {
	c, ok := p.waitingStudents[studentId]
	return c, ok
}

// removeConn drops every entry bound to the given connection and reports the
// tutor and student ids that were removed so the caller can do the durable
// bookkeeping.
func (p *presenceRegistry) removeConn(c *Client) (tutorIds, studentIds []int) {
	for id, tc := range p.availableTutors {
		if tc == c {
			p.removeFromOrder(id)
			delete(p.availableTutors, id)
			tutorIds = append(tutorIds, id)
		}
	}
	for id, tc := range p.matchingTutors {
		if tc == c {
			delete(p.matchingTutors, id)
			tutorIds = append(tutorIds, id)
		}
	}
	for id, sc := range p.waitingStudents {
		if sc == c {
			delete(p.waitingStudents, id)
			studentIds = append(studentIds, id)
		}
	}
	return tutorIds, studentIds
}

func (p *presenceRegistry) removeFromOrder(tutorId int) {
	for i, id := range p.tutorOrder {
		if id == tutorId {
			p.tutorOrder = append(p.tutorOrder[:i], p.tutorOrder[i+1:]...)
			return
		}
	}
}
