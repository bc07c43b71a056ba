package domain

import (
	"context"
	"fmt"
	"time"
)

// EventState is the lifecycle state of an event.
type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

// Event is an organizer-owned listing. It is written by the event management
// service; this repository only reads it.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description,omitempty"`
	CategoryID        int64      `json:"category"`
	InitiatorID       int64      `json:"initiator"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	RequestModeration bool       `json:"requestModeration"`
	State             EventState `json:"state"`
	EventDate         time.Time  `json:"eventDate"`
	CreatedOn         time.Time  `json:"createdOn"`
	PublishedOn       *time.Time `json:"publishedOn,omitempty"`
}

// IsPublished reports whether the event accepts participation requests.
func (e *Event) IsPublished() bool {
	return e.State == EventStatePublished
}

// HasLimit reports whether the event caps the number of confirmed participants.
func (e *Event) HasLimit() bool {
	return e.ParticipantLimit > 0
}

// URI is the public path of the event; hits are recorded and queried under it.
func (e *Event) URI() string {
	return EventURI(e.ID)
}

// EventURI returns the public path of the event with the given id.
func EventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

// EventSort selects the ordering of the public catalog.
type EventSort string

const (
	EventSortDate  EventSort = "EVENT_DATE"
	EventSortViews EventSort = "VIEWS"
)

// EventFilter holds the public catalog query. RangeStart is always set by the
// service before it reaches the repository.
type EventFilter struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          EventSort
	Page          PaginationParams
}

// EventRepository defines read access to events.
type EventRepository interface {
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByIDAndInitiator(ctx context.Context, id, initiatorID int64) (*Event, error)
	GetPublishedByID(ctx context.Context, id int64) (*Event, error)
	// ListPublished returns one page of published events ordered by event date.
	ListPublished(ctx context.Context, filter EventFilter) ([]*Event, error)
}
