// file: internals/helpers/audit.go
package helper

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/* ===============================
   Audit emission
=================================*/

// AuditEvent is what the ledger emits after a committed mutation. Persistence
// of the trail lives in an external sink; this process only emits.
type AuditEvent struct {
	SchoolID uuid.UUID         `json:"school_id"`
	ActorID  uuid.UUID         `json:"actor_id"`
	Action   string            `json:"action"` // e.g. invoice.generate, payment.post
	Entity   string            `json:"entity"`
	EntityID uuid.UUID         `json:"entity_id"`
	Payload  datatypes.JSONMap `json:"payload,omitempty"`
	At       time.Time         `json:"at"`
}

// AuditSink receives committed-mutation events.
type AuditSink interface {
	Emit(ev AuditEvent)
}

type logAuditSink struct{}

func (logAuditSink) Emit(ev AuditEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[AUDIT] marshal err: %v action=%s", err, ev.Action)
		return
	}
	log.Printf("[AUDIT] %s", b)
}

var auditSink AuditSink = logAuditSink{}

// SetAuditSink swaps the sink (tests, external forwarder).
func SetAuditSink(s AuditSink) {
	if s != nil {
		auditSink = s
	}
}

// Audit emits one event to the configured sink. Never fails the caller.
func Audit(ev AuditEvent) {
	auditSink.Emit(ev)
}
