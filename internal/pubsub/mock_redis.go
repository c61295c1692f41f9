package pubsub

import (
	"context"
	"sync"
)

// MockRedisClient is an in-memory Client for tests
type MockRedisClient struct {
	mu       sync.Mutex
	Streams  map[string][]interface{} // stream -> published values
	Channels map[string][]interface{} // channel -> published messages
	Err      error                    // returned from publish calls when set
}

// NewMockRedisClient creates an empty mock client
func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		Streams:  make(map[string][]interface{}),
		Channels: make(map[string][]interface{}),
	}
}

// PublishToStream records the value under the stream name
func (m *MockRedisClient) PublishToStream(ctx context.Context, stream string, key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Streams[stream] = append(m.Streams[stream], value)
	return nil
}

// Publish records the message under the channel name
func (m *MockRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Channels[channel] = append(m.Channels[channel], message)
	return nil
}

// StreamLen returns the number of values published to a stream
func (m *MockRedisClient) StreamLen(stream string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Streams[stream])
}

// Close is a no-op
func (m *MockRedisClient) Close() error {
	return nil
}
