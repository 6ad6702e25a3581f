package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCachingClientDisabled(t *testing.T) {
	mock := &MockClient{Response: Raw("x")}
	client, err := NewCachingClient(mock, 0)
	require.NoError(t, err)
	assert.Same(t, mock, client)
}

func TestCachingClientReusesSuccessfulGenerations(t *testing.T) {
	mock := &MockClient{Response: Raw("cached")}
	client, err := NewCachingClient(mock, 8)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		gen, err := client.Generate(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "cached", gen.Text)
	}
	assert.Equal(t, 1, mock.Calls())

	_, err = client.Generate(context.Background(), "other prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls())
}

func TestCachingClientDoesNotCacheErrors(t *testing.T) {
	mock := &MockClient{Script: []MockReply{
		{Err: &RequestError{Message: "boom"}},
		{Generation: Raw("second")},
	}}
	client, err := NewCachingClient(mock, 8)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "p")
	require.True(t, errors.Is(err, ErrRequestFailed))

	gen, err := client.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "second", gen.Text)
	assert.Equal(t, 1, client.(*CachingClient).Len())
}
