package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/testutil"
)

func TestEngineBroadcastsAttemptEvents(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t, testutil.HardcoreQuiz("quiz-1"))

	events, cancel, err := env.Engine.Subscribe(ctx, "u1", "quiz-1")
	require.NoError(t, err)
	defer cancel()
	other, cancelOther, err := env.Engine.Subscribe(ctx, "u2", "quiz-1")
	require.NoError(t, err)
	defer cancelOther()

	_, err = env.Engine.AnswerQuestion(ctx, "u1", "quiz-1", domain.AnswerSubmission{QuestionID: "q1", SelectedAnswer: "answer-1"})
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, "answer", ev.Type)
		assert.Equal(t, "u1", ev.UserID)
		result, ok := ev.Payload.(domain.AnswerResult)
		require.True(t, ok)
		assert.True(t, result.Correct)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for answer event")
	}

	select {
	case ev := <-other:
		t.Fatalf("event leaked to another user: %+v", ev)
	default:
	}
}

func TestFeedDropsOldestWhenFull(t *testing.T) {
	feed := app.NewFeed()
	ch, cancel := feed.Subscribe("u1", "quiz-1")

	for i := 0; i < 20; i++ {
		feed.Publish(domain.AttemptEvent{Type: "answer", UserID: "u1", QuizID: "quiz-1", Payload: i})
	}
	first := <-ch
	assert.NotEqual(t, 0, first.Payload, "oldest events should have been dropped")

	assert.Equal(t, 1, feed.Subscribers("u1", "quiz-1"))
	cancel()
	cancel()
	assert.Equal(t, 0, feed.Subscribers("u1", "quiz-1"))
	remaining := 0
	for range ch {
		remaining++
	}
	assert.Equal(t, 7, remaining)
}
