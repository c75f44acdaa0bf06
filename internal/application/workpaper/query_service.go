package workpaper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// QueryService handles the client-communication workflow: queries, their
// message threads, and the derived open-queries task.
type QueryService struct {
	queryRepo      workpaper.QueryRepository
	taskRepo       workpaper.TaskRepository
	jobRepo        workpaper.JobRepository
	eventPublisher shared.EventPublisher
}

// NewQueryService creates a new QueryService
func NewQueryService(
	queryRepo workpaper.QueryRepository,
	taskRepo workpaper.TaskRepository,
	jobRepo workpaper.JobRepository,
) *QueryService {
	return &QueryService{
		queryRepo: queryRepo,
		taskRepo:  taskRepo,
		jobRepo:   jobRepo,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *QueryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateQueryRequest creates a draft query, optionally with an opening
// message and immediate delivery.
type CreateQueryRequest struct {
	JobID            uuid.UUID      `json:"job_id" binding:"required"`
	ModuleInstanceID *uuid.UUID     `json:"module_instance_id,omitempty"`
	TransactionID    *uuid.UUID     `json:"transaction_id,omitempty"`
	Title            string         `json:"title" binding:"required"`
	QueryType        string         `json:"query_type" binding:"required,oneof=text request_upload request_number request_percentage request_confirmation request_selection"`
	RequestConfig    map[string]any `json:"request_config,omitempty"`
	InitialMessage   string         `json:"initial_message,omitempty"`
	SendImmediately  bool           `json:"send_immediately,omitempty"`
}

// AddMessageRequest appends a message to a query's thread
type AddMessageRequest struct {
	Text       string `json:"text" binding:"required"`
	SenderType string `json:"sender_type" binding:"required,oneof=admin client system"`
}

// RespondRequest records the client's structured answer
type RespondRequest struct {
	ResponseData map[string]any `json:"response_data" binding:"required"`
	Message      string         `json:"message,omitempty"`
}

// BulkSendRequest sends multiple draft queries at once
type BulkSendRequest struct {
	QueryIDs []uuid.UUID `json:"query_ids" binding:"required,min=1"`
}

// QueryResponse is the API view of a query
type QueryResponse struct {
	ID               uuid.UUID      `json:"id"`
	ClientID         uuid.UUID      `json:"client_id"`
	JobID            uuid.UUID      `json:"job_id"`
	ModuleInstanceID *uuid.UUID     `json:"module_instance_id,omitempty"`
	TransactionID    *uuid.UUID     `json:"transaction_id,omitempty"`
	Title            string         `json:"title"`
	QueryType        string         `json:"query_type"`
	RequestConfig    map[string]any `json:"request_config,omitempty"`
	Status           string         `json:"status"`
	ResponseData     map[string]any `json:"response_data,omitempty"`
	CreatedByID      uuid.UUID      `json:"created_by_id"`
	CreatedByEmail   string         `json:"created_by_email,omitempty"`
	SentAt           *time.Time     `json:"sent_at,omitempty"`
	RespondedAt      *time.Time     `json:"responded_at,omitempty"`
	ResolvedAt       *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// MessageResponse is the API view of a thread message
type MessageResponse struct {
	ID          uuid.UUID `json:"id"`
	QueryID     uuid.UUID `json:"query_id"`
	SenderType  string    `json:"sender_type"`
	SenderID    uuid.UUID `json:"sender_id"`
	SenderEmail string    `json:"sender_email,omitempty"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskResponse is the API view of a derived task
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClientID    uuid.UUID  `json:"client_id"`
	JobID       uuid.UUID  `json:"job_id"`
	TaskType    string     `json:"task_type"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	OpenCount   int        `json:"open_count"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// BulkSendResult reports per-query outcomes of a bulk send
type BulkSendResult struct {
	Sent   []uuid.UUID          `json:"sent"`
	Failed map[uuid.UUID]string `json:"failed,omitempty"`
}

// QueriesSummary counts a job's queries by status
type QueriesSummary struct {
	JobID    uuid.UUID      `json:"job_id"`
	Total    int            `json:"total"`
	Open     int            `json:"open"`
	ByStatus map[string]int `json:"by_status"`
}

// ToQueryResponse converts a Query to QueryResponse
func ToQueryResponse(q *workpaper.Query) QueryResponse {
	return QueryResponse{
		ID:               q.ID,
		ClientID:         q.ClientID,
		JobID:            q.JobID,
		ModuleInstanceID: q.ModuleInstanceID,
		TransactionID:    q.TransactionID,
		Title:            q.Title,
		QueryType:        q.Type.String(),
		RequestConfig:    q.RequestConfig,
		Status:           q.Status.String(),
		ResponseData:     q.ResponseData,
		CreatedByID:      q.CreatedByID,
		CreatedByEmail:   q.CreatedByEmail,
		SentAt:           q.SentAt,
		RespondedAt:      q.RespondedAt,
		ResolvedAt:       q.ResolvedAt,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}

// ToMessageResponse converts a QueryMessage to MessageResponse
func ToMessageResponse(m *workpaper.QueryMessage) MessageResponse {
	return MessageResponse{
		ID:          m.ID,
		QueryID:     m.QueryID,
		SenderType:  m.SenderType.String(),
		SenderID:    m.SenderID,
		SenderEmail: m.SenderEmail,
		Text:        m.Text,
		CreatedAt:   m.CreatedAt,
	}
}

// ToTaskResponse converts a Task to TaskResponse
func ToTaskResponse(t *workpaper.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		JobID:       t.JobID,
		TaskType:    t.Type.String(),
		Status:      t.Status.String(),
		Title:       t.Title,
		OpenCount:   t.OpenCount,
		CompletedAt: t.CompletedAt,
	}
}

// CreateQuery creates a query on a job. Frozen jobs still accept queries;
// they are communication, not workpaper data.
func (s *QueryService) CreateQuery(ctx context.Context, actor shared.Actor, req CreateQueryRequest) (*QueryResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, req.JobID)
	if err != nil {
		return nil, err
	}

	query, err := workpaper.NewQuery(job.ClientID, job.ID, req.ModuleInstanceID, req.TransactionID,
		req.Title, workpaper.QueryType(req.QueryType), req.RequestConfig, actor)
	if err != nil {
		return nil, err
	}
	if req.SendImmediately {
		if err := query.Send(actor); err != nil {
			return nil, err
		}
	}
	if err := s.queryRepo.Save(ctx, query); err != nil {
		return nil, err
	}
	if req.InitialMessage != "" {
		msg, err := workpaper.NewQueryMessage(query.ID, workpaper.SenderTypeAdmin, actor.ID, actor.Email, req.InitialMessage)
		if err != nil {
			return nil, err
		}
		if err := s.queryRepo.SaveMessage(ctx, msg); err != nil {
			return nil, err
		}
	}

	if query.Status.IsOpen() {
		s.recomputeQueriesTask(ctx, job.ClientID, job.ID)
	}
	s.publishEvents(ctx, query.GetDomainEvents())
	query.ClearDomainEvents()

	resp := ToQueryResponse(query)
	return &resp, nil
}

// SendQuery delivers a draft query to the client
func (s *QueryService) SendQuery(ctx context.Context, queryID uuid.UUID, actor shared.Actor) (*QueryResponse, error) {
	query, err := s.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if err := query.Send(actor); err != nil {
		return nil, err
	}
	if err := s.queryRepo.Save(ctx, query); err != nil {
		return nil, err
	}

	s.recomputeQueriesTask(ctx, query.ClientID, query.JobID)
	s.publishEvents(ctx, query.GetDomainEvents())
	query.ClearDomainEvents()

	resp := ToQueryResponse(query)
	return &resp, nil
}

// BulkSend delivers multiple draft queries, reporting each failure
// individually instead of aborting the batch.
func (s *QueryService) BulkSend(ctx context.Context, actor shared.Actor, req BulkSendRequest) (*BulkSendResult, error) {
	result := &BulkSendResult{
		Sent:   make([]uuid.UUID, 0, len(req.QueryIDs)),
		Failed: make(map[uuid.UUID]string),
	}
	var clientID, jobID uuid.UUID
	for _, id := range req.QueryIDs {
		query, err := s.queryRepo.FindByID(ctx, id)
		if err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		if err := query.Send(actor); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		if err := s.queryRepo.Save(ctx, query); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		s.publishEvents(ctx, query.GetDomainEvents())
		query.ClearDomainEvents()
		result.Sent = append(result.Sent, id)
		clientID, jobID = query.ClientID, query.JobID
	}
	if len(result.Sent) > 0 {
		s.recomputeQueriesTask(ctx, clientID, jobID)
	}
	return result, nil
}

// AddMessage appends a thread message and applies the turn-taking rules:
// a client message marks the query responded, an admin reply hands the
// turn back to the client.
func (s *QueryService) AddMessage(ctx context.Context, queryID uuid.UUID, actor shared.Actor, req AddMessageRequest) (*MessageResponse, error) {
	query, err := s.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	senderType := workpaper.SenderType(req.SenderType)

	if err := query.ApplyMessage(senderType, actor); err != nil {
		return nil, err
	}
	msg, err := workpaper.NewQueryMessage(query.ID, senderType, actor.ID, actor.Email, req.Text)
	if err != nil {
		return nil, err
	}
	if err := s.queryRepo.Save(ctx, query); err != nil {
		return nil, err
	}
	if err := s.queryRepo.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.recomputeQueriesTask(ctx, query.ClientID, query.JobID)
	s.publishEvents(ctx, query.GetDomainEvents())
	query.ClearDomainEvents()

	resp := ToMessageResponse(msg)
	return &resp, nil
}

// RespondToQuery records the client's structured answer, with an optional
// accompanying thread message.
func (s *QueryService) RespondToQuery(ctx context.Context, queryID uuid.UUID, actor shared.Actor, req RespondRequest) (*QueryResponse, error) {
	query, err := s.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if err := query.RecordClientResponse(req.ResponseData, actor); err != nil {
		return nil, err
	}
	if err := s.queryRepo.Save(ctx, query); err != nil {
		return nil, err
	}
	if req.Message != "" {
		msg, err := workpaper.NewQueryMessage(query.ID, workpaper.SenderTypeClient, actor.ID, actor.Email, req.Message)
		if err != nil {
			return nil, err
		}
		if err := s.queryRepo.SaveMessage(ctx, msg); err != nil {
			return nil, err
		}
	}

	s.recomputeQueriesTask(ctx, query.ClientID, query.JobID)
	s.publishEvents(ctx, query.GetDomainEvents())
	query.ClearDomainEvents()

	resp := ToQueryResponse(query)
	return &resp, nil
}

// ResolveQuery closes a query as answered
func (s *QueryService) ResolveQuery(ctx context.Context, queryID uuid.UUID, actor shared.Actor) (*QueryResponse, error) {
	return s.close(ctx, queryID, actor, (*workpaper.Query).Resolve)
}

// DismissQuery closes a query without an answer
func (s *QueryService) DismissQuery(ctx context.Context, queryID uuid.UUID, actor shared.Actor) (*QueryResponse, error) {
	return s.close(ctx, queryID, actor, (*workpaper.Query).Dismiss)
}

func (s *QueryService) close(ctx context.Context, queryID uuid.UUID, actor shared.Actor,
	op func(*workpaper.Query, shared.Actor) error) (*QueryResponse, error) {

	query, err := s.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if err := op(query, actor); err != nil {
		return nil, err
	}
	if err := s.queryRepo.Save(ctx, query); err != nil {
		return nil, err
	}

	s.recomputeQueriesTask(ctx, query.ClientID, query.JobID)
	s.publishEvents(ctx, query.GetDomainEvents())
	query.ClearDomainEvents()

	resp := ToQueryResponse(query)
	return &resp, nil
}

// GetQuery retrieves a query with its message thread
func (s *QueryService) GetQuery(ctx context.Context, queryID uuid.UUID) (*QueryResponse, []MessageResponse, error) {
	query, err := s.queryRepo.FindByID(ctx, queryID)
	if err != nil {
		return nil, nil, err
	}
	messages, err := s.queryRepo.FindMessages(ctx, queryID)
	if err != nil {
		return nil, nil, err
	}
	resp := ToQueryResponse(query)
	msgs := make([]MessageResponse, len(messages))
	for i, m := range messages {
		msgs[i] = ToMessageResponse(m)
	}
	return &resp, msgs, nil
}

// ListJobQueries lists all queries on a job
func (s *QueryService) ListJobQueries(ctx context.Context, jobID uuid.UUID) ([]QueryResponse, error) {
	queries, err := s.queryRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resps := make([]QueryResponse, len(queries))
	for i, q := range queries {
		resps[i] = ToQueryResponse(q)
	}
	return resps, nil
}

// JobQueriesSummary counts a job's queries by status
func (s *QueryService) JobQueriesSummary(ctx context.Context, jobID uuid.UUID) (*QueriesSummary, error) {
	queries, err := s.queryRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	summary := &QueriesSummary{
		JobID:    jobID,
		Total:    len(queries),
		ByStatus: make(map[string]int),
	}
	for _, q := range queries {
		summary.ByStatus[q.Status.String()]++
		if q.Status.IsOpen() {
			summary.Open++
		}
	}
	return summary, nil
}

// ListClientTasks lists the client's open tasks
func (s *QueryService) ListClientTasks(ctx context.Context, clientID uuid.UUID) ([]TaskResponse, error) {
	tasks, err := s.taskRepo.FindOpenByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	resps := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		resps[i] = ToTaskResponse(t)
	}
	return resps, nil
}

// recomputeQueriesTask rebuilds the derived open-queries task from scratch.
// It is idempotent: the task state is a pure function of the job's open
// queries, so running it twice changes nothing. Failures are swallowed; the
// next query transition recomputes again.
func (s *QueryService) recomputeQueriesTask(ctx context.Context, clientID, jobID uuid.UUID) {
	open, err := s.queryRepo.FindByJobAndStatuses(ctx, jobID, []workpaper.QueryStatus{
		workpaper.QueryStatusSentToClient,
		workpaper.QueryStatusAwaitingClient,
		workpaper.QueryStatusClientResponded,
	})
	if err != nil {
		return
	}

	task, err := s.taskRepo.FindByJobAndType(ctx, jobID, workpaper.TaskTypeQueries)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return
	}

	switch {
	case task == nil && len(open) == 0:
		return
	case task == nil:
		task = workpaper.NewQueriesTask(clientID, jobID, len(open))
	case len(open) == 0:
		task.Complete()
	default:
		task.SetOpenCount(len(open))
	}
	_ = s.taskRepo.Save(ctx, task)
}

func (s *QueryService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// event delivery failures must not fail the workflow
	_ = s.eventPublisher.Publish(ctx, events...)
}
