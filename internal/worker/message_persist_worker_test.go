package worker

import (
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netauto/internal/model"
)

type recordingAck struct {
	acked, nacked int
}

func (a *recordingAck) Ack(uint64, bool) error        { a.acked++; return nil }
func (a *recordingAck) Nack(uint64, bool, bool) error { a.nacked++; return nil }
func (a *recordingAck) Reject(uint64, bool) error     { return nil }

type memStore struct {
	saved []model.ChatMessage
	err   error
}

func (s *memStore) Create(m *model.ChatMessage) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, *m)
	return nil
}

func delivery(t *testing.T, ack amqp.Acknowledger, body interface{}) amqp.Delivery {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: raw}
}

func TestHandlePersistsAndAcks(t *testing.T) {
	store := &memStore{}
	w := NewMessagePersistWorker(nil, store, "q", nil)
	ack := &recordingAck{}

	w.handle(delivery(t, ack, model.ChatMessage{ID: 99, SessionID: "s1", MessageType: "user", Content: "show version"}))

	require.Len(t, store.saved, 1)
	assert.Equal(t, "s1", store.saved[0].SessionID)
	assert.Zero(t, store.saved[0].ID)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandleNacksBadPayload(t *testing.T) {
	store := &memStore{}
	w := NewMessagePersistWorker(nil, store, "q", nil)
	ack := &recordingAck{}

	w.handle(delivery(t, ack, []byte("{not json")))
	assert.Empty(t, store.saved)
	assert.Equal(t, 1, ack.nacked)
}

func TestHandleNacksStoreFailure(t *testing.T) {
	w := NewMessagePersistWorker(nil, &memStore{err: errors.New("db locked")}, "q", nil)
	ack := &recordingAck{}

	w.handle(delivery(t, ack, model.ChatMessage{SessionID: "s1", Content: "x"}))
	assert.Equal(t, 1, ack.nacked)
	assert.Zero(t, ack.acked)
}
