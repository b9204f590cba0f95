package domain

import (
	"github.com/yungbote/typecast-backend/internal/domain/quiz"
	"github.com/yungbote/typecast-backend/internal/domain/result"
	"github.com/yungbote/typecast-backend/internal/domain/user"
)

type Quiz = quiz.Quiz
type Section = quiz.Section
type Question = quiz.Question
type QuizSession = quiz.Session
type Response = quiz.Response

type Result = result.Result
type LatestResult = result.LatestResult

type UserProfile = user.UserProfile

// Models lists every persisted record, in migration order.
func Models() []any {
	return []any{
		&Quiz{},
		&Section{},
		&Question{},
		&QuizSession{},
		&Response{},
		&UserProfile{},
		&Result{},
		&LatestResult{},
	}
}
