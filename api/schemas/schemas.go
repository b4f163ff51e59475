// File: api/schemas/schemas.go
package schemas

import "time"

// Role identifies the class of a device and determines which actions it may
// legitimately perform.
type Role string

const (
	RoleSensor Role = "sensor"
	RoleRobot  Role = "robot"
	RoleViewer Role = "viewer"
	RoleRogue  Role = "rogue"
)

// Action is an operation a device can request from the controller.
type Action string

const (
	ActionSendStatus Action = "send_status"
	ActionMove       Action = "move"
	ActionReadStatus Action = "read_status"
	ActionShutdown   Action = "shutdown"
)

// PolicyMode selects which access policy variant the controller enforces.
type PolicyMode string

const (
	// ModeWeak performs an identity lookup only: no credential comparison and
	// no RBAC check. Unknown senders may still be accepted.
	ModeWeak PolicyMode = "weak"
	// ModeSecure requires a matching credential and an RBAC-permitted action.
	ModeSecure PolicyMode = "secure"
)

// Valid reports whether the mode is one of the two supported variants.
func (m PolicyMode) Valid() bool {
	return m == ModeWeak || m == ModeSecure
}

// Reason explains the disposition of a message. Denials and drops are
// expected outcomes carried as data, never as errors.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonUnknownDevice Reason = "unknown_device"
	ReasonBadCredential Reason = "bad_credential"
	ReasonRoleForbidden Reason = "role_forbidden"
	ReasonDropped       Reason = "dropped"
)

// DeviceIdentity describes a device taking part in a run. It is created at
// agent construction and never mutated afterwards.
type DeviceIdentity struct {
	DeviceID   string `json:"device_id"`
	Role       Role   `json:"role"`
	Credential string `json:"credential,omitempty"`
}

// Message is a single request from a device to the controller. One message
// produces exactly one Outcome.
type Message struct {
	SenderID   string    `json:"sender_id"`
	Role       Role      `json:"role"`
	Action     Action    `json:"action"`
	Credential string    `json:"credential,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// HasCredential reports whether the sender presented any credential at all.
func (m Message) HasCredential() bool {
	return m.Credential != ""
}

// Decision is the pure output of an access policy evaluation.
type Decision struct {
	Allow  bool   `json:"allow"`
	Reason Reason `json:"reason"`
}

// Outcome is the terminal record of one message's disposition. Dropped
// messages carry zero latency and never reach the access policy.
type Outcome struct {
	Message  Message       `json:"message"`
	Accepted bool          `json:"accepted"`
	Reason   Reason        `json:"reason"`
	Latency  time.Duration `json:"latency"`
}

// TrafficSource labels whether a record came from a legitimate device agent
// or the rogue agent.
type TrafficSource string

const (
	SourceLegitimate TrafficSource = "legitimate"
	SourceRogue      TrafficSource = "rogue"
)

// Record is the flat, per-message result row consumed by reporters.
type Record struct {
	Source              TrafficSource `json:"source"`
	SenderID            string        `json:"sender_id"`
	Role                Role          `json:"role"`
	Action              Action        `json:"action"`
	CredentialPresented bool          `json:"credential_presented"`
	Accepted            bool          `json:"accepted"`
	Reason              Reason        `json:"reason"`
	LatencyMs           float64       `json:"latency_ms"`
}

// NewRecord flattens an outcome into a result row.
func NewRecord(source TrafficSource, o Outcome) Record {
	return Record{
		Source:              source,
		SenderID:            o.Message.SenderID,
		Role:                o.Message.Role,
		Action:              o.Message.Action,
		CredentialPresented: o.Message.HasCredential(),
		Accepted:            o.Accepted,
		Reason:              o.Reason,
		LatencyMs:           float64(o.Latency) / float64(time.Millisecond),
	}
}

// Envelope bundles everything a reporter persists for one run.
type Envelope struct {
	RunID       string     `json:"run_id"`
	Mode        PolicyMode `json:"mode"`
	GeneratedAt time.Time  `json:"generated_at"`
	Summary     Summary    `json:"summary"`
	Records     []Record   `json:"records"`
}

// Summary holds the per-run aggregates the experiment driver computes from
// the raw records.
type Summary struct {
	RunID              string     `json:"run_id"`
	Mode               PolicyMode `json:"mode"`
	TotalMessages      int        `json:"total_messages"`
	TotalLegitimate    int        `json:"total_legitimate"`
	TotalRogue         int        `json:"total_rogue"`
	LegitimateAccepted int        `json:"legitimate_accepted"`
	RogueAccepted      int        `json:"rogue_accepted"`
	Dropped            int        `json:"dropped"`
	AvgLatencyAllMs    float64    `json:"avg_latency_all_ms"`
	AvgLatencyLegitMs  float64    `json:"avg_latency_legitimate_ms"`
	AvgLatencyRogueMs  float64    `json:"avg_latency_rogue_ms"`
}
