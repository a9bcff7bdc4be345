package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticClient_Complete(t *testing.T) {
	client := NewStaticClient(`{"ok":true}`)

	text, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "system", calls[0].SystemPrompt)
	assert.Equal(t, "user", calls[0].UserPrompt)
	assert.False(t, calls[0].Streaming)
}

func TestStaticClient_EmptyResponse(t *testing.T) {
	_, err := NewStaticClient("").Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindEmptyResponse))
}

func TestStaticClient_Failing(t *testing.T) {
	cause := &BackendError{Kind: KindUnavailable, Message: "down"}
	_, err := NewFailingClient(cause).Complete(context.Background(), "s", "u")
	assert.ErrorIs(t, err, cause)
}

func TestStaticClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStaticClient("text").Complete(ctx, "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsKind(err, KindUnavailable))
}

func TestStaticClient_CompleteStream(t *testing.T) {
	response := strings.Repeat("abcdefghij", 5)
	client := NewStaticClient(response).WithChunkSize(7)

	var chunks []string
	text, err := client.CompleteStream(context.Background(), "s", "u", func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, response, text)
	assert.Equal(t, response, strings.Join(chunks, ""))
	assert.Len(t, chunks, 8)
	assert.True(t, client.Calls()[0].Streaming)
}

func TestStaticClient_StreamConsumerError(t *testing.T) {
	stop := errors.New("client went away")
	_, err := NewStaticClient("abc").CompleteStream(context.Background(), "s", "u", func(string) error {
		return stop
	})
	assert.ErrorIs(t, err, stop)
}

func TestStaticClient_ConcurrentCalls(t *testing.T) {
	client := NewStaticClient("x")

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = client.Complete(context.Background(), "s", "u")
		}()
	}
	wg.Wait()

	assert.Len(t, client.Calls(), 20)
}
