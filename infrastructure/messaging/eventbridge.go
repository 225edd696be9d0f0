// Package messaging publishes domain events: to EventBridge in deployed
// environments, or to in-process subscribers for local development and
// tests.
package messaging

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"netgraph-backend/application/ports"
	"netgraph-backend/domain/events"
	pkgerrors "netgraph-backend/pkg/errors"
)

const eventSource = "netgraph.backend"

// EventBridgePublisher sends domain events to an EventBridge bus.
type EventBridgePublisher struct {
	client  *eventbridge.Client
	busName string
	logger  *zap.Logger
}

var _ ports.EventPublisher = (*EventBridgePublisher)(nil)

// NewEventBridgePublisher creates the publisher.
func NewEventBridgePublisher(client *eventbridge.Client, busName string, logger *zap.Logger) *EventBridgePublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridgePublisher{client: client, busName: busName, logger: logger}
}

// Publish sends the events in one PutEvents call. EventBridge accepts at
// most 10 entries per call, which is above anything this service emits
// in one unit of work.
func (p *EventBridgePublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}
	entries := make([]types.PutEventsRequestEntry, 0, len(evts))
	for _, evt := range evts {
		detail, err := json.Marshal(evt)
		if err != nil {
			return pkgerrors.NewInternalError("failed to marshal domain event").WithCause(err)
		}
		entries = append(entries, types.PutEventsRequestEntry{
			EventBusName: aws.String(p.busName),
			Source:       aws.String(eventSource),
			DetailType:   aws.String(evt.EventType()),
			Detail:       aws.String(string(detail)),
		})
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		return pkgerrors.NewUnavailableError("EventBridge PutEvents failed").WithCause(err)
	}
	if out.FailedEntryCount > 0 {
		for _, entry := range out.Entries {
			if entry.ErrorCode != nil {
				p.logger.Warn("event entry rejected",
					zap.String("error_code", aws.ToString(entry.ErrorCode)),
					zap.String("error_message", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return pkgerrors.NewUnavailableError("EventBridge rejected event entries")
	}
	return nil
}
