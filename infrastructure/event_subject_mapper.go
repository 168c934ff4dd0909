package infrastructure

import (
	"fmt"

	"insurecalc/events"
)

// StreamName is the JetStream stream that carries every published event
const StreamName = "contribution_events"

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeResultsReplaced:
		return "contributions.results_replaced"
	case events.EventTypeDatasetImported:
		return "contributions.dataset_imported"
	default:
		return fmt.Sprintf("unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		"contributions.results_replaced",
		"contributions.dataset_imported",
	}
}

// EventTypes returns every event type that has a subject
func (m *EventSubjectMapper) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeResultsReplaced,
		events.EventTypeDatasetImported,
	}
}
