package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_StreamsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chatService = &mockChatService{deltas: []string{"The answer ", "is 42."}}

	out, err := execute(t, "ask", "what is the answer?")

	require.NoError(t, err)
	assert.Contains(t, out, "The answer is 42.")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chatService = nil

	_, err := execute(t, "ask", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAskCmd_ValidationFailureAborts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	validateAI = func(context.Context) error {
		return errors.New("embedding service unreachable")
	}

	_, err := execute(t, "ask", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "startup validation failed")
}

func TestAskCmd_StreamFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	chatService = &mockChatService{streamErr: errors.New("stream cut")}

	_, err := execute(t, "ask", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream cut")
}
