package audit

import (
	"context"
	"log/slog"

	id "votegate/pkg/domain"
	"votegate/pkg/platform/middleware/metadata"
	"votegate/pkg/requestcontext"
)

// Publisher hands events to the worker through a buffered inbox. Emission
// never blocks a request: when the inbox is full the event is dropped and
// logged, trading completeness for request latency.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox is consumed by the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// Emit stamps the event with the request time, ID, and client metadata, then
// queues it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = metadata.GetClientIP(ctx)
	}
	if event.Device == "" {
		event.Device = metadata.GetDevice(ctx)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"type", event.Type,
			"voter_no", event.VoterNo,
		)
	}
}

// The typed emitters below satisfy the Recorder interfaces the domain
// services declare.

func (p *Publisher) VoterRegistered(ctx context.Context, voterNo id.VoterNo, maskedPhone string) {
	p.Emit(ctx, Event{Type: TypeVoterRegistered, VoterNo: voterNo.String(), Phone: maskedPhone})
}

func (p *Publisher) VoterLoggedIn(ctx context.Context, voterNo id.VoterNo) {
	p.Emit(ctx, Event{Type: TypeVoterLoggedIn, VoterNo: voterNo.String()})
}

func (p *Publisher) VoteCast(ctx context.Context, voterNo id.VoterNo, electionID id.ElectionID) {
	p.Emit(ctx, Event{Type: TypeVoteCast, VoterNo: voterNo.String(), ElectionID: electionID.String()})
}

func (p *Publisher) ElectionClosed(ctx context.Context, electionID id.ElectionID) {
	p.Emit(ctx, Event{Type: TypeElectionClosed, ElectionID: electionID.String()})
}

func (p *Publisher) VoterStatusChanged(ctx context.Context, voterNo id.VoterNo, status string) {
	p.Emit(ctx, Event{Type: TypeVoterStatusChanged, VoterNo: voterNo.String(), Detail: status})
}
