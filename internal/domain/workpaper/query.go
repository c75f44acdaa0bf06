package workpaper

import (
	"fmt"
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QueryStatus is the lifecycle state of a client query
type QueryStatus string

const (
	QueryStatusDraft           QueryStatus = "draft"
	QueryStatusSentToClient    QueryStatus = "sent_to_client"
	QueryStatusAwaitingClient  QueryStatus = "awaiting_client"
	QueryStatusClientResponded QueryStatus = "client_responded"
	QueryStatusResolved        QueryStatus = "resolved"
	QueryStatusDismissed       QueryStatus = "dismissed"
)

// validQueryTransitions is the complete transition table. Resolved and
// dismissed are terminal.
var validQueryTransitions = map[QueryStatus][]QueryStatus{
	QueryStatusDraft:           {QueryStatusSentToClient, QueryStatusDismissed},
	QueryStatusSentToClient:    {QueryStatusAwaitingClient, QueryStatusClientResponded, QueryStatusResolved, QueryStatusDismissed},
	QueryStatusAwaitingClient:  {QueryStatusClientResponded, QueryStatusResolved, QueryStatusDismissed},
	QueryStatusClientResponded: {QueryStatusAwaitingClient, QueryStatusResolved, QueryStatusDismissed},
	QueryStatusResolved:        {},
	QueryStatusDismissed:       {},
}

// IsValid checks if the status is a known QueryStatus
func (s QueryStatus) IsValid() bool {
	_, ok := validQueryTransitions[s]
	return ok
}

// String returns the string representation of QueryStatus
func (s QueryStatus) String() string {
	return string(s)
}

// IsOpen reports whether the query still needs client attention. Open
// queries drive the derived "queries" task.
func (s QueryStatus) IsOpen() bool {
	switch s {
	case QueryStatusSentToClient, QueryStatusAwaitingClient, QueryStatusClientResponded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed
func (s QueryStatus) IsTerminal() bool {
	return s == QueryStatusResolved || s == QueryStatusDismissed
}

// CanTransitionTo checks the transition table
func (s QueryStatus) CanTransitionTo(target QueryStatus) bool {
	for _, t := range validQueryTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// QueryType describes what the query asks of the client
type QueryType string

const (
	QueryTypeText                QueryType = "text"
	QueryTypeRequestUpload       QueryType = "request_upload"
	QueryTypeRequestNumber       QueryType = "request_number"
	QueryTypeRequestPercentage   QueryType = "request_percentage"
	QueryTypeRequestConfirmation QueryType = "request_confirmation"
	QueryTypeRequestSelection    QueryType = "request_selection"
)

// IsValid checks if the type is a known QueryType
func (t QueryType) IsValid() bool {
	switch t {
	case QueryTypeText, QueryTypeRequestUpload, QueryTypeRequestNumber,
		QueryTypeRequestPercentage, QueryTypeRequestConfirmation, QueryTypeRequestSelection:
		return true
	}
	return false
}

// String returns the string representation of QueryType
func (t QueryType) String() string {
	return string(t)
}

// SenderType identifies who wrote a query message
type SenderType string

const (
	SenderTypeAdmin  SenderType = "admin"
	SenderTypeClient SenderType = "client"
	SenderTypeSystem SenderType = "system"
)

// IsValid checks if the sender is a known SenderType
func (s SenderType) IsValid() bool {
	switch s {
	case SenderTypeAdmin, SenderTypeClient, SenderTypeSystem:
		return true
	}
	return false
}

// String returns the string representation of SenderType
func (s SenderType) String() string {
	return string(s)
}

// QueryMessage is one entry in a query's ordered thread
type QueryMessage struct {
	shared.BaseEntity
	QueryID     uuid.UUID  `json:"query_id"`
	SenderType  SenderType `json:"sender_type"`
	SenderID    uuid.UUID  `json:"sender_id"`
	SenderEmail string     `json:"sender_email,omitempty"`
	Text        string     `json:"text"`
}

// NewQueryMessage creates a thread message
func NewQueryMessage(queryID uuid.UUID, senderType SenderType, senderID uuid.UUID, senderEmail, text string) (*QueryMessage, error) {
	if queryID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Query ID cannot be empty")
	}
	if !senderType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown sender type: %s", senderType))
	}
	if text == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Message text cannot be empty")
	}
	return &QueryMessage{
		BaseEntity:  shared.NewBaseEntity(),
		QueryID:     queryID,
		SenderType:  senderType,
		SenderID:    senderID,
		SenderEmail: senderEmail,
		Text:        text,
	}, nil
}

// Query is a client-communication thread attached to a job, optionally
// narrowed to a module or a single transaction.
type Query struct {
	shared.BaseAggregateRoot
	ClientID         uuid.UUID      `json:"client_id"`
	JobID            uuid.UUID      `json:"job_id"`
	ModuleInstanceID *uuid.UUID     `json:"module_instance_id,omitempty"`
	TransactionID    *uuid.UUID     `json:"transaction_id,omitempty"`
	Title            string         `json:"title"`
	Type             QueryType      `json:"query_type"`
	RequestConfig    map[string]any `json:"request_config,omitempty" gorm:"-"`
	Status           QueryStatus    `json:"status"`
	ResponseData     map[string]any `json:"response_data,omitempty" gorm:"-"`
	CreatedByID      uuid.UUID      `json:"created_by_id"`
	CreatedByEmail   string         `json:"created_by_email,omitempty"`
	SentAt           *time.Time     `json:"sent_at,omitempty"`
	RespondedAt      *time.Time     `json:"responded_at,omitempty"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
}

// NewQuery creates a query in draft status
func NewQuery(clientID, jobID uuid.UUID, moduleInstanceID, transactionID *uuid.UUID,
	title string, queryType QueryType, requestConfig map[string]any, actor shared.Actor) (*Query, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Client ID cannot be empty")
	}
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Job ID cannot be empty")
	}
	if title == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Query title cannot be empty")
	}
	if !queryType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown query type: %s", queryType))
	}

	q := &Query{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		JobID:             jobID,
		ModuleInstanceID:  moduleInstanceID,
		TransactionID:     transactionID,
		Title:             title,
		Type:              queryType,
		RequestConfig:     requestConfig,
		Status:            QueryStatusDraft,
		CreatedByID:       actor.ID,
		CreatedByEmail:    actor.Email,
	}
	q.AddDomainEvent(NewQueryCreatedEvent(q, actor))
	return q, nil
}

func (q *Query) transition(target QueryStatus) error {
	if !q.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Query %s cannot move from %q to %q", q.ID, q.Status, target))
	}
	q.Status = target
	q.Touch()
	return nil
}

// Send delivers a draft query to the client
func (q *Query) Send(actor shared.Actor) error {
	if q.Status != QueryStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Only draft queries can be sent, query %s is %q", q.ID, q.Status))
	}
	if err := q.transition(QueryStatusSentToClient); err != nil {
		return err
	}
	now := time.Now()
	q.SentAt = &now
	q.AddDomainEvent(NewQueryStatusChangedEvent(q, QueryStatusDraft, actor))
	return nil
}

// RecordClientResponse stores the client's structured answer and marks
// the query responded. Allowed while sent_to_client or awaiting_client.
func (q *Query) RecordClientResponse(responseData map[string]any, actor shared.Actor) error {
	if q.Status != QueryStatusSentToClient && q.Status != QueryStatusAwaitingClient {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Query %s is %q and cannot accept a client response", q.ID, q.Status))
	}
	from := q.Status
	if err := q.transition(QueryStatusClientResponded); err != nil {
		return err
	}
	q.ResponseData = responseData
	now := time.Now()
	q.RespondedAt = &now
	q.AddDomainEvent(NewQueryStatusChangedEvent(q, from, actor))
	return nil
}

// ApplyMessage updates status for a new thread message. An admin message
// while the client has responded hands the turn back to the client.
func (q *Query) ApplyMessage(senderType SenderType, actor shared.Actor) error {
	if q.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Query %s is %q and no longer accepts messages", q.ID, q.Status))
	}
	from := q.Status
	switch {
	case senderType == SenderTypeClient && (q.Status == QueryStatusSentToClient || q.Status == QueryStatusAwaitingClient):
		if err := q.transition(QueryStatusClientResponded); err != nil {
			return err
		}
	case senderType == SenderTypeAdmin && q.Status == QueryStatusClientResponded:
		if err := q.transition(QueryStatusAwaitingClient); err != nil {
			return err
		}
	default:
		return nil
	}
	q.AddDomainEvent(NewQueryStatusChangedEvent(q, from, actor))
	return nil
}

// Resolve closes the query as answered
func (q *Query) Resolve(actor shared.Actor) error {
	from := q.Status
	if err := q.transition(QueryStatusResolved); err != nil {
		return err
	}
	now := time.Now()
	q.ResolvedAt = &now
	q.AddDomainEvent(NewQueryStatusChangedEvent(q, from, actor))
	return nil
}

// Dismiss closes the query without an answer
func (q *Query) Dismiss(actor shared.Actor) error {
	from := q.Status
	if err := q.transition(QueryStatusDismissed); err != nil {
		return err
	}
	now := time.Now()
	q.ResolvedAt = &now
	q.AddDomainEvent(NewQueryStatusChangedEvent(q, from, actor))
	return nil
}
