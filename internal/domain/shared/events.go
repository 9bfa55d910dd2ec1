// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// User events
	EventUserRegistered EventType = "user.registered"
	EventUserUpdated    EventType = "user.updated"

	// Reward events
	EventGemsAwarded EventType = "reward.gems_awarded"

	// Progress events
	EventQuizSubmitted    EventType = "progress.quiz_submitted"
	EventUnitCompleted    EventType = "progress.unit_completed"
	EventPageCompleted    EventType = "progress.page_completed"
	EventActivityRecorded EventType = "progress.activity_recorded"

	// Content events
	EventContentCreated EventType = "content.created"
	EventContentUpdated EventType = "content.updated"
	EventContentDeleted EventType = "content.deleted"

	// Leaderboard events
	EventLeaderboardUpdated EventType = "leaderboard.updated"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// User Events
// ═══════════════════════════════════════════════════════════════════════════

// UserRegisteredEvent is emitted when a new account is created.
type UserRegisteredEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// Payload implements Event interface.
func (e UserRegisteredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"role":    e.Role,
	}
}

// NewUserRegisteredEvent creates a new UserRegisteredEvent.
func NewUserRegisteredEvent(userID, role string) UserRegisteredEvent {
	return UserRegisteredEvent{
		BaseEvent: NewBaseEvent(EventUserRegistered, userID),
		UserID:    userID,
		Role:      role,
	}
}

// UserUpdatedEvent is emitted when an account's role or profile changes.
type UserUpdatedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Field  string `json:"field"` // "role" or "profile"
}

// Payload implements Event interface.
func (e UserUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"field":   e.Field,
	}
}

// NewUserUpdatedEvent creates a new UserUpdatedEvent.
func NewUserUpdatedEvent(userID, field string) UserUpdatedEvent {
	return UserUpdatedEvent{
		BaseEvent: NewBaseEvent(EventUserUpdated, userID),
		UserID:    userID,
		Field:     field,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Reward Events
// ═══════════════════════════════════════════════════════════════════════════

// GemsAwardedEvent is emitted whenever the ledger grants gems to a user.
// Leaderboard rebuilds hang off this event.
type GemsAwardedEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	Amount     int    `json:"amount"`
	NewBalance int    `json:"new_balance"`
	Source     string `json:"source"` // "quiz_question" or "unit_completion"
	SourceID   string `json:"source_id"`
	Subject    string `json:"subject,omitempty"`
}

// Payload implements Event interface.
func (e GemsAwardedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"amount":      e.Amount,
		"new_balance": e.NewBalance,
		"source":      e.Source,
		"source_id":   e.SourceID,
		"subject":     e.Subject,
	}
}

// NewGemsAwardedEvent creates a new GemsAwardedEvent.
func NewGemsAwardedEvent(userID string, amount, newBalance int, source, sourceID, subject string) GemsAwardedEvent {
	return GemsAwardedEvent{
		BaseEvent:  NewBaseEvent(EventGemsAwarded, userID),
		UserID:     userID,
		Amount:     amount,
		NewBalance: newBalance,
		Source:     source,
		SourceID:   sourceID,
		Subject:    subject,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Progress Events
// ═══════════════════════════════════════════════════════════════════════════

// QuizSubmittedEvent is emitted when a user submits quiz answers.
type QuizSubmittedEvent struct {
	BaseEvent
	UserID       string `json:"user_id"`
	QuizID       string `json:"quiz_id"`
	Score        int    `json:"score"`
	CorrectCount int    `json:"correct_count"`
	Passed       bool   `json:"passed"`
}

// Payload implements Event interface.
func (e QuizSubmittedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       e.UserID,
		"quiz_id":       e.QuizID,
		"score":         e.Score,
		"correct_count": e.CorrectCount,
		"passed":        e.Passed,
	}
}

// NewQuizSubmittedEvent creates a new QuizSubmittedEvent.
func NewQuizSubmittedEvent(userID, quizID string, score, correctCount int, passed bool) QuizSubmittedEvent {
	return QuizSubmittedEvent{
		BaseEvent:    NewBaseEvent(EventQuizSubmitted, userID),
		UserID:       userID,
		QuizID:       quizID,
		Score:        score,
		CorrectCount: correctCount,
		Passed:       passed,
	}
}

// UnitCompletedEvent is emitted when a user finishes a course unit.
type UnitCompletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	UnitID   string `json:"unit_id"`
}

// Payload implements Event interface.
func (e UnitCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"course_id": e.CourseID,
		"unit_id":   e.UnitID,
	}
}

// NewUnitCompletedEvent creates a new UnitCompletedEvent.
func NewUnitCompletedEvent(userID, courseID, unitID string) UnitCompletedEvent {
	return UnitCompletedEvent{
		BaseEvent: NewBaseEvent(EventUnitCompleted, userID),
		UserID:    userID,
		CourseID:  courseID,
		UnitID:    unitID,
	}
}

// PageCompletedEvent is emitted when a user finishes a course page.
// Pages never award gems; the event only feeds progress and activity.
type PageCompletedEvent struct {
	BaseEvent
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	PageID   string `json:"page_id"`
}

// Payload implements Event interface.
func (e PageCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"course_id": e.CourseID,
		"page_id":   e.PageID,
	}
}

// NewPageCompletedEvent creates a new PageCompletedEvent.
func NewPageCompletedEvent(userID, courseID, pageID string) PageCompletedEvent {
	return PageCompletedEvent{
		BaseEvent: NewBaseEvent(EventPageCompleted, userID),
		UserID:    userID,
		CourseID:  courseID,
		PageID:    pageID,
	}
}

// ActivityRecordedEvent is emitted for any action that counts toward a streak.
type ActivityRecordedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Kind   string `json:"kind"` // e.g., "quiz_submission", "page_view"
}

// Payload implements Event interface.
func (e ActivityRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id": e.UserID,
		"kind":    e.Kind,
	}
}

// NewActivityRecordedEvent creates a new ActivityRecordedEvent.
func NewActivityRecordedEvent(userID, kind string) ActivityRecordedEvent {
	return ActivityRecordedEvent{
		BaseEvent: NewBaseEvent(EventActivityRecorded, userID),
		UserID:    userID,
		Kind:      kind,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// LeaderboardUpdatedEvent is emitted after a bucket has been re-ranked.
type LeaderboardUpdatedEvent struct {
	BaseEvent
	Subject   string `json:"subject"`
	Timeframe string `json:"timeframe"`
	Entries   int    `json:"entries"`
}

// Payload implements Event interface.
func (e LeaderboardUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"subject":   e.Subject,
		"timeframe": e.Timeframe,
		"entries":   e.Entries,
	}
}

// NewLeaderboardUpdatedEvent creates a new LeaderboardUpdatedEvent.
func NewLeaderboardUpdatedEvent(subject, timeframe string, entries int) LeaderboardUpdatedEvent {
	return LeaderboardUpdatedEvent{
		BaseEvent: NewBaseEvent(EventLeaderboardUpdated, subject+":"+timeframe),
		Subject:   subject,
		Timeframe: timeframe,
		Entries:   entries,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Content Events
// ═══════════════════════════════════════════════════════════════════════════

// ContentChangedEvent is emitted when managed content is created, updated or deleted.
type ContentChangedEvent struct {
	BaseEvent
	ItemID   string `json:"item_id"`
	ItemKind string `json:"item_kind"` // "course", "quiz", "resource", "folder"
	ActorID  string `json:"actor_id"`
}

// Payload implements Event interface.
func (e ContentChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"item_id":   e.ItemID,
		"item_kind": e.ItemKind,
		"actor_id":  e.ActorID,
	}
}

// NewContentChangedEvent creates a new ContentChangedEvent.
func NewContentChangedEvent(eventType EventType, itemID, itemKind, actorID string) ContentChangedEvent {
	return ContentChangedEvent{
		BaseEvent: NewBaseEvent(eventType, itemID),
		ItemID:    itemID,
		ItemKind:  itemKind,
		ActorID:   actorID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
