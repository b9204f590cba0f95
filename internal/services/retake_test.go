package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/typecast-backend/internal/data/repos/testutil"
	"github.com/yungbote/typecast-backend/internal/platform/apierr"
)

func TestRetakePrefillSameQuiz(t *testing.T) {
	h := newHarness(t)
	s, _ := h.scored("auth0|jane", "Jane Doe", 1, -1)
	role := "Designer"
	_, err := h.profiles.UpdateOnboarding(anon(), "auth0|jane", OnboardingInput{Role: &role})
	require.NoError(t, err)

	got, err := h.retake.GetRetakePrefill(anon(), s.ID, h.quiz.ID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 16)
	first := h.quiz.Sections[0].Questions[0]
	assert.Equal(t, 1, got.Answers[first.ID])
	assert.Equal(t, "Jane Doe", got.Onboarding.DisplayName)
	assert.Equal(t, "Designer", got.Onboarding.Role)
}

func TestRetakePrefillDropsQuestionsOutsideCurrentQuiz(t *testing.T) {
	h := newHarness(t)
	s, _ := h.scored("", "", 2, -2)
	other := testutil.SeedQuiz(t, context.Background(), h.db, 2)

	got, err := h.retake.GetRetakePrefill(anon(), s.ID, other.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Answers)
	assert.Equal(t, OnboardingPrefill{}, got.Onboarding, "anonymous sessions have no onboarding")
}

func TestRetakePrefillWithoutResult(t *testing.T) {
	h := newHarness(t)
	s := h.start("")
	h.answerAll(s.ID, 1, 1)

	got, err := h.retake.GetRetakePrefill(anon(), s.ID, h.quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Answers, "unscored sessions do not prefill")
}

func TestRetakePrefillNotFound(t *testing.T) {
	h := newHarness(t)
	s := h.start("")

	_, err := h.retake.GetRetakePrefill(anon(), uuid.New(), h.quiz.ID)
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))

	_, err = h.retake.GetRetakePrefill(anon(), s.ID, uuid.New())
	assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}
