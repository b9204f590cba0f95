package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/typecast-backend/internal/domain"
	"github.com/yungbote/typecast-backend/internal/modules/personality"
)

// SeedQuiz creates a quiz with one section per dimension and perSection
// questions each, alternating reversed and forward phrasing (the first
// question of a section is forward).
func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, perSection int) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:      uuid.New(),
		Slug:    "quiz-" + uuid.NewString()[:8],
		Title:   "Test quiz",
		Version: 1,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	order := 0
	for i, d := range personality.Dimensions() {
		s := &types.Section{
			ID:           uuid.New(),
			QuizID:       q.ID,
			Title:        d.String(),
			Dimension:    d.String(),
			DisplayOrder: i,
		}
		if err := tx.WithContext(ctx).Create(s).Error; err != nil {
			tb.Fatalf("seed section: %v", err)
		}
		for j := 0; j < perSection; j++ {
			qn := &types.Question{
				ID:           uuid.New(),
				QuizID:       q.ID,
				SectionID:    s.ID,
				Statement:    fmt.Sprintf("%s statement %d", d, j),
				DisplayOrder: order,
				IsReversed:   j%2 == 1,
			}
			order++
			if err := tx.WithContext(ctx).Create(qn).Error; err != nil {
				tb.Fatalf("seed question: %v", err)
			}
			s.Questions = append(s.Questions, qn)
		}
		q.Sections = append(q.Sections, s)
	}
	return q
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, quizID uuid.UUID, identity string) *types.QuizSession {
	tb.Helper()
	s := &types.QuizSession{
		ID:        uuid.New(),
		QuizID:    quizID,
		StartedAt: time.Now().UTC(),
	}
	if identity != "" {
		s.Identity = &identity
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

func SeedResponse(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID, questionID uuid.UUID, value int) *types.Response {
	tb.Helper()
	r := &types.Response{
		ID:         uuid.New(),
		SessionID:  sessionID,
		QuestionID: questionID,
		Value:      value,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed response: %v", err)
	}
	return r
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, identity, slug string) *types.UserProfile {
	tb.Helper()
	p := &types.UserProfile{
		ID:          uuid.New(),
		Identity:    identity,
		Slug:        slug,
		DisplayName: slug,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedResult(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID uuid.UUID, profileID *uuid.UUID, public bool) *types.Result {
	tb.Helper()
	code := "SLXV"
	r := &types.Result{
		ID:                      uuid.New(),
		SessionID:               sessionID,
		ProfileID:               profileID,
		WorkStyleTrait:          "structured",
		WorkStyleLabel:          "Structured",
		DecisionProcessTrait:    "analytical",
		DecisionProcessLabel:    "Analytical",
		CommunicationStyleTrait: "expressive",
		CommunicationStyleLabel: "Expressive",
		FocusOrientationTrait:   "visionary",
		FocusOrientationLabel:   "Visionary",
		PersonalityCode:         code,
		PersonalityTypeCode:     &code,
		CatalogVersion:          1,
		Confidence:              65,
		Fit:                     70,
		IsPublic:                public,
		ComputedAt:              time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed result: %v", err)
	}
	return r
}
