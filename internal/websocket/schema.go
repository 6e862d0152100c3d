package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing      Action = "ping"
	ActionViolation Action = "violation"
)

// RequestPayload is the superset of all client frames; Action selects which
// fields are meaningful.
type RequestPayload struct {
	Action Action `json:"action"`
	Reason string `json:"reason,omitempty"`
	Count  int    `json:"count,omitempty"`
	Lock   bool   `json:"lock,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError        Event = "error"
	EventTick         Event = "tick"
	EventPong         Event = "pong"
	EventViolationAck Event = "violation_ack"
)

// TickResponse is the authoritative clock push. Clients render this and
// never trust their own elapsed-time arithmetic.
type TickResponse struct {
	Event            Event  `json:"event"`
	Status           string `json:"status"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	IsLocked         bool   `json:"is_locked"`
	ViolationCount   int    `json:"violation_count"`
}

// ViolationAckResponse confirms a violation frame was recorded.
type ViolationAckResponse struct {
	Event          Event `json:"event"`
	ViolationCount int   `json:"violation_count"`
	IsLocked       bool  `json:"is_locked"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
