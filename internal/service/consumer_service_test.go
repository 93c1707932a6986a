package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-examgen-be/internal/dto"
	"ai-examgen-be/pkg/genai"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "generation.lifecycle.test"

func newConsumerFixture(t *testing.T) (*gochannel.GoChannel, IPublisherService, *recordingMailer) {
	t.Helper()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	mail := &recordingMailer{}
	consumer := NewConsumerService(pubSub, testTopic, mail, nil, nopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, consumer.Consume(ctx))

	return pubSub, NewPublisherService(testTopic, pubSub), mail
}

func publishLifecycle(t *testing.T, pub IPublisherService, msg dto.StageLifecycleMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, pub.Publish(context.Background(), payload))
}

func TestConsumer_EmailsOnCompletedSolution(t *testing.T) {
	_, pub, mail := newConsumerFixture(t)

	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID:        "user-1",
		Email:         "guru@sekolah.id",
		Stage:         genai.StageSolution,
		Status:        "completed",
		Subject:       "Matematika",
		TestTitle:     "Ulangan Harian",
		QuestionCount: 15,
	})

	require.Eventually(t, func() bool {
		return mail.completionCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	mail.mu.Lock()
	call := mail.completions[0]
	mail.mu.Unlock()
	assert.Equal(t, "guru@sekolah.id", call.email)
	assert.Equal(t, "Matematika", call.subject)
	assert.Equal(t, "Ulangan Harian", call.testTitle)
	assert.Equal(t, 15, call.questionCount)
}

func TestConsumer_NoEmailForEarlierStages(t *testing.T) {
	_, pub, mail := newConsumerFixture(t)

	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1",
		Email:  "guru@sekolah.id",
		Stage:  genai.StageBlueprint,
		Status: "completed",
	})
	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1",
		Email:  "guru@sekolah.id",
		Stage:  genai.StageTest,
		Status: "completed",
	})
	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1",
		Email:  "guru@sekolah.id",
		Stage:  genai.StageSolution,
		Status: "failed",
		Error:  "model timed out",
	})

	// The solution-completed email is the only trigger; give the worker a
	// moment to drain before asserting nothing was sent.
	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1", Email: "guru@sekolah.id", Stage: genai.StageSolution, Status: "completed",
	})
	require.Eventually(t, func() bool {
		return mail.completionCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestConsumer_SkipsUsersWithoutEmail(t *testing.T) {
	_, pub, mail := newConsumerFixture(t)

	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1",
		Stage:  genai.StageSolution,
		Status: "completed",
	})
	// Sentinel message proves the first one was processed.
	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-2", Email: "lain@sekolah.id", Stage: genai.StageSolution, Status: "completed",
	})

	require.Eventually(t, func() bool {
		return mail.completionCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	mail.mu.Lock()
	defer mail.mu.Unlock()
	assert.Equal(t, "lain@sekolah.id", mail.completions[0].email)
}

func TestConsumer_MalformedMessageIsDropped(t *testing.T) {
	pubSub, pub, mail := newConsumerFixture(t)

	// Raw garbage straight onto the topic; the worker must ack and move on.
	require.NoError(t, pubSub.Publish(testTopic, message.NewMessage(watermill.NewUUID(), []byte("{broken"))))

	publishLifecycle(t, pub, dto.StageLifecycleMessage{
		UserID: "user-1", Email: "guru@sekolah.id", Stage: genai.StageSolution, Status: "completed",
	})

	require.Eventually(t, func() bool {
		return mail.completionCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
}
