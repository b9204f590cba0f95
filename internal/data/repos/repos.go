package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/typecast-backend/internal/data/repos/quiz"
	"github.com/yungbote/typecast-backend/internal/data/repos/result"
	"github.com/yungbote/typecast-backend/internal/data/repos/user"
	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

type QuizRepo = quiz.QuizRepo
type SessionRepo = quiz.SessionRepo
type ResponseRepo = quiz.ResponseRepo

type ResultRepo = result.ResultRepo
type LatestResultRepo = result.LatestResultRepo

type UserProfileRepo = user.UserProfileRepo

type Set struct {
	Quiz         QuizRepo
	Session      SessionRepo
	Response     ResponseRepo
	Result       ResultRepo
	LatestResult LatestResultRepo
	UserProfile  UserProfileRepo
}

func NewSet(db *gorm.DB, log *logger.Logger) Set {
	return Set{
		Quiz:         quiz.NewQuizRepo(db, log),
		Session:      quiz.NewSessionRepo(db, log),
		Response:     quiz.NewResponseRepo(db, log),
		Result:       result.NewResultRepo(db, log),
		LatestResult: result.NewLatestResultRepo(db, log),
		UserProfile:  user.NewUserProfileRepo(db, log),
	}
}
