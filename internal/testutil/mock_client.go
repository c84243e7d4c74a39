//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/fourteen/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetName(name string) {
	m.Called(name)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，记录收到的消息（用于不需要 mock 断言的测试）
type SimpleClient struct {
	ID       string
	Name     string
	RoomCode string
	Closed   bool

	mu       sync.Mutex
	Messages []*protocol.Message
}

func (m *SimpleClient) GetID() string       { return m.ID }
func (m *SimpleClient) GetName() string     { return m.Name }
func (m *SimpleClient) SetName(name string) { m.Name = name }
func (m *SimpleClient) GetRoom() string     { return m.RoomCode }
func (m *SimpleClient) SetRoom(code string) { m.RoomCode = code }
func (m *SimpleClient) Close()              { m.Closed = true }

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

// LastMessage 返回最后一条消息
func (m *SimpleClient) LastMessage() *protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Messages) == 0 {
		return nil
	}
	return m.Messages[len(m.Messages)-1]
}

// MessagesOfType 返回指定类型的消息
func (m *SimpleClient) MessagesOfType(msgType protocol.MessageType) []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*protocol.Message
	for _, msg := range m.Messages {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

// Reset 清空已记录的消息
func (m *SimpleClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = nil
}
