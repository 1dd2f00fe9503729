// Package audit emits provisioning audit events to Kafka.
//
// Two topics:
//   - TopicAudit carries the normal trail (student provisioned, provisioning
//     failed, registration deferred, student activated).
//   - TopicReconciliation carries compensation failures: a compensation that
//     fails leaves an orphaned resource behind with no automatic cleanup, so
//     these records exist for manual reconciliation tooling.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"registrar/pkg/requestcontext"
)

// Topics published by this service.
const (
	TopicAudit          = "registrar.audit"
	TopicReconciliation = "registrar.reconciliation"
)

// Action identifies what happened.
type Action string

const (
	ActionStudentProvisioned   Action = "student_provisioned"
	ActionProvisioningFailed   Action = "provisioning_failed"
	ActionRegistrationDeferred Action = "registration_deferred"
	ActionStudentActivated     Action = "student_activated"
	ActionCompensationFailed   Action = "compensation_failed"
)

// Event is the wire shape for both topics. Keyed by email so all events for
// one provisioning attempt land in the same partition.
type Event struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`

	Email     string `json:"email,omitempty"`
	StudentID string `json:"student_id,omitempty"`
	MatricNo  string `json:"matric_no,omitempty"`

	// Failure details.
	ErrorCode string `json:"error_code,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// Compensation failures: which undo failed and which step's failure
	// triggered the unwind.
	FailedStep  string `json:"failed_step,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// Producer is the kafka surface the publisher needs.
type Producer interface {
	Produce(ctx context.Context, topic string, key, value []byte) error
}

// Publisher enriches events with request metadata and publishes them.
// Publishing is best effort: a broker outage must never fail a provisioning
// request, so errors are logged and swallowed.
type Publisher struct {
	producer Producer
	logger   *slog.Logger
}

// NewPublisher constructs a Publisher. A nil producer yields a publisher
// that only logs, which keeps local development broker-free.
func NewPublisher(producer Producer, logger *slog.Logger) *Publisher {
	return &Publisher{producer: producer, logger: logger}
}

// Emit publishes event to the audit topic.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	p.publish(ctx, TopicAudit, event)
}

// EmitReconciliation publishes event to the reconciliation topic.
func (p *Publisher) EmitReconciliation(ctx context.Context, event Event) {
	p.publish(ctx, TopicReconciliation, event)
}

func (p *Publisher) publish(ctx context.Context, topic string, event Event) {
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)

	if p.producer == nil {
		p.logger.InfoContext(ctx, "audit event (no broker configured)",
			"topic", topic,
			"action", string(event.Action),
			"email", event.Email,
		)
		return
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to marshal audit event",
			"action", string(event.Action),
			"error", err.Error(),
		)
		return
	}

	if err := p.producer.Produce(ctx, topic, []byte(event.Email), value); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish audit event",
			"topic", topic,
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}
