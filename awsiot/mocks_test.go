package awsiot

import (
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// mockToken implements mqtt.Token for testing
type mockToken struct {
	err  error
	done chan struct{}
}

func newMockToken(err error) *mockToken {
	t := &mockToken{err: err, done: make(chan struct{})}
	close(t.done)
	return t
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Error() error                   { return t.err }
func (t *mockToken) Done() <-chan struct{}          { return t.done }

// mockPublishToken adds the MessageID accessor the adapter relies on
// for acknowledgment reporting
type mockPublishToken struct {
	*mockToken
	id uint16
}

func (t *mockPublishToken) MessageID() uint16 { return t.id }

type publishRecord struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// mockClient implements mqtt.Client for testing
type mockClient struct {
	opts *mqtt.ClientOptions

	connectErr   error
	subscribeErr error
	publishErr   error

	connected     atomic.Bool
	nextMessageID uint32

	mu            sync.Mutex
	subscriptions map[string]mqtt.MessageHandler
	published     []publishRecord
}

func newMockClient() *mockClient {
	return &mockClient{subscriptions: make(map[string]mqtt.MessageHandler)}
}

// install points the package's paho factory at this mock for the
// duration of the test
func (m *mockClient) install(t interface{ Cleanup(func()) }) {
	orig := newPahoClient
	newPahoClient = func(opts *mqtt.ClientOptions) mqtt.Client {
		m.opts = opts
		return m
	}
	t.Cleanup(func() { newPahoClient = orig })
}

func (m *mockClient) Connect() mqtt.Token {
	if m.connectErr != nil {
		return newMockToken(m.connectErr)
	}
	m.connected.Store(true)
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return newMockToken(nil)
}

func (m *mockClient) Disconnect(quiesce uint) {
	m.connected.Store(false)
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	if m.publishErr != nil {
		return newMockToken(m.publishErr)
	}
	data, _ := payload.([]byte)
	m.mu.Lock()
	m.published = append(m.published, publishRecord{topic: topic, qos: qos, retained: retained, payload: data})
	m.mu.Unlock()
	id := uint16(atomic.AddUint32(&m.nextMessageID, 1))
	return &mockPublishToken{mockToken: newMockToken(nil), id: id}
}

func (m *mockClient) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	if m.subscribeErr != nil {
		return newMockToken(m.subscribeErr)
	}
	m.mu.Lock()
	m.subscriptions[topic] = callback
	m.mu.Unlock()
	return newMockToken(nil)
}

func (m *mockClient) SubscribeMultiple(filters map[string]byte, callback mqtt.MessageHandler) mqtt.Token {
	return newMockToken(nil)
}

func (m *mockClient) Unsubscribe(topics ...string) mqtt.Token {
	m.mu.Lock()
	for _, topic := range topics {
		delete(m.subscriptions, topic)
	}
	m.mu.Unlock()
	return newMockToken(nil)
}

func (m *mockClient) AddRoute(topic string, callback mqtt.MessageHandler) {}
func (m *mockClient) IsConnected() bool                       { return m.connected.Load() }
func (m *mockClient) IsConnectionOpen() bool                  { return m.connected.Load() }
func (m *mockClient) OptionsReader() mqtt.ClientOptionsReader { return mqtt.ClientOptionsReader{} }

// deliver routes a synthetic message through the registered handler,
// falling back to the default publish handler
func (m *mockClient) deliver(msg *mockMessage) {
	m.mu.Lock()
	handler := m.subscriptions[msg.topic]
	m.mu.Unlock()
	if handler == nil && m.opts != nil {
		handler = m.opts.DefaultPublishHandler
	}
	if handler != nil {
		handler(m, msg)
	}
}

// subscribedTopics lists the topics with registered handlers
func (m *mockClient) subscribedTopics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	topics := make([]string, 0, len(m.subscriptions))
	for topic := range m.subscriptions {
		topics = append(topics, topic)
	}
	return topics
}

// publishedRecords snapshots the publish calls seen so far
func (m *mockClient) publishedRecords() []publishRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]publishRecord, len(m.published))
	copy(records, m.published)
	return records
}

// mockMessage implements mqtt.Message for testing
type mockMessage struct {
	topic   string
	payload []byte
	qos     byte
	id      uint16
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return m.qos }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return m.id }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}
