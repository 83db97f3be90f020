package pubsub

import (
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Mock is an in-memory PubSubClient for tests. Sent messages are recorded
// per topic as their msgpack encoding.
type Mock struct {
	mu        sync.Mutex
	ProjectID string
	Sent      map[string][][]byte
}

// NewMock creates a new mock instance.
func NewMock(projectID string) *Mock {
	return &Mock{
		ProjectID: projectID,
		Sent:      make(map[string][][]byte),
	}
}

func (m *Mock) SendMessage(topic string, data any) error {
	encoded, err := msgpack.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent[topic] = append(m.Sent[topic], encoded)
	return nil
}

func (m *Mock) ProcessMessage(data []byte, returnValue any) error {
	return msgpack.Unmarshal(data, returnValue)
}

// SentCount returns how many messages were sent to a topic.
func (m *Mock) SentCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent[topic])
}
