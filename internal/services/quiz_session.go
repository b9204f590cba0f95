package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
	"github.com/yungbote/typecast-backend/internal/data/repos"
	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/domain/quiz"
	"github.com/yungbote/typecast-backend/internal/observability"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
	"github.com/yungbote/typecast-backend/internal/platform/dbctx"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type StartSessionInput struct {
	QuizID   uuid.UUID
	Identity string
	Metadata ClientMetadata
	// RetakeOf links the new attempt to an earlier session.
	RetakeOf *uuid.UUID
}

type Progress struct {
	Answered int64 `json:"answered"`
	Total    int64 `json:"total"`
}

type SessionService interface {
	GetQuiz(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, error)
	StartSession(dbc dbctx.Context, in StartSessionInput) (*types.QuizSession, error)
	SubmitResponse(dbc dbctx.Context, sessionID, questionID uuid.UUID, value int) (*Progress, error)
	// CompleteSession stamps completed_at; later calls return the first stamp.
	CompleteSession(dbc dbctx.Context, sessionID uuid.UUID) (*types.QuizSession, error)
}

type sessionService struct {
	db        *gorm.DB
	log       *logger.Logger
	quizzes   repos.QuizRepo
	sessions  repos.SessionRepo
	responses repos.ResponseRepo
	now       func() time.Time
}

func NewSessionService(db *gorm.DB, log *logger.Logger, quizzes repos.QuizRepo, sessions repos.SessionRepo, responses repos.ResponseRepo) SessionService {
	return &sessionService{
		db:        db,
		log:       log.With("service", "SessionService"),
		quizzes:   quizzes,
		sessions:  sessions,
		responses: responses,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *sessionService) GetQuiz(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, error) {
	const op = "quiz.get"
	q, err := s.quizzes.GetWithContent(dbc, quizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if q == nil {
		return nil, apierr.NotFound(op, "quiz %s not found", quizID)
	}
	return q, nil
}

func (s *sessionService) StartSession(dbc dbctx.Context, in StartSessionInput) (_ *types.QuizSession, err error) {
	const op = "session.start"
	ctx, span := observability.StartSpan(dbc.Ctx, "SessionService.StartSession",
		attribute.String("quiz_id", in.QuizID.String()),
		attribute.Bool("authenticated", in.Identity != ""),
	)
	defer func() { observability.EndSpan(span, err) }()
	dbc = dbctx.Context{Ctx: ctx, Tx: dbc.Tx}

	q, err := s.quizzes.GetByID(dbc, in.QuizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if q == nil {
		return nil, apierr.NotFound(op, "quiz %s not found", in.QuizID)
	}
	if in.RetakeOf != nil {
		orig, err := s.sessions.GetByID(dbc, *in.RetakeOf)
		if err != nil {
			return nil, aggregates.MapError(op, err)
		}
		if orig == nil {
			return nil, apierr.NotFound(op, "session %s not found", *in.RetakeOf)
		}
	}

	meta, err := json.Marshal(in.Metadata)
	if err != nil {
		return nil, apierr.Wrap(apierr.CodeInternal, op, err)
	}
	row := &types.QuizSession{
		ID:                uuid.New(),
		QuizID:            q.ID,
		RetakeOfSessionID: in.RetakeOf,
		StartedAt:         s.now(),
		ClientMetadata:    datatypes.JSON(meta),
	}
	if identity := strings.TrimSpace(in.Identity); identity != "" {
		row.Identity = &identity
	}
	created, err := s.sessions.Create(dbc, row)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.WithContext(ctx).Info("session started", "session_id", created.ID, "quiz_id", q.ID, "identity", in.Identity)
	return created, nil
}

func (s *sessionService) SubmitResponse(dbc dbctx.Context, sessionID, questionID uuid.UUID, value int) (*Progress, error) {
	const op = "session.submit_response"
	if !quiz.ValidResponseValue(value) {
		return nil, apierr.Validation(op, "value must be between %d and %d, got %d", quiz.MinResponseValue, quiz.MaxResponseValue, value)
	}
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if session == nil {
		return nil, apierr.NotFound(op, "session %s not found", sessionID)
	}
	ok, err := s.quizzes.QuestionBelongs(dbc, session.QuizID, questionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if !ok {
		return nil, apierr.NotFound(op, "question %s is not part of this quiz", questionID)
	}

	if err := s.responses.Upsert(dbc, &types.Response{
		SessionID:  sessionID,
		QuestionID: questionID,
		Value:      value,
	}); err != nil {
		return nil, aggregates.MapError(op, err)
	}

	answered, err := s.responses.CountBySession(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	total, err := s.quizzes.CountQuestions(dbc, session.QuizID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return &Progress{Answered: answered, Total: total}, nil
}

func (s *sessionService) CompleteSession(dbc dbctx.Context, sessionID uuid.UUID) (*types.QuizSession, error) {
	const op = "session.complete"
	session, err := s.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	if session == nil {
		return nil, apierr.NotFound(op, "session %s not found", sessionID)
	}
	if session.CompletedAt != nil {
		return session, nil
	}
	updated, err := s.sessions.MarkCompleted(dbc, sessionID, s.now())
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return updated, nil
}
