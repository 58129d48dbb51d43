package realtime

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePublisher struct {
	err    error
	events []string
}

func (f *fakePublisher) PublishOrgEvent(orgID uuid.UUID, event string, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

type fakeSubscriber struct{}

func (fakeSubscriber) SubscribeOrg(orgID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	return func() {}, nil
}

func newTestClient(orgID uuid.UUID) *Client {
	return &Client{ID: uuid.NewString(), OrgID: orgID, send: make(chan WSMessage, 1)}
}

func TestPublishGoesThroughRedisWhenConfigured(t *testing.T) {
	orgID := uuid.New()
	pub := &fakePublisher{}
	hub := NewHub(zap.NewNop(), pub, fakeSubscriber{})
	client := newTestClient(orgID)
	hub.Register(client)

	hub.Publish(orgID, EventSessionIngested, map[string]string{"k": "v"})

	assert.Equal(t, []string{EventSessionIngested}, pub.events)
	select {
	case <-client.send:
		t.Fatal("local delivery would double-deliver: the subscriber callback handles local clients")
	default:
	}
}

func TestPublishFailureIsLoggedAndDeliveredLocally(t *testing.T) {
	orgID := uuid.New()
	core, logs := observer.New(zap.WarnLevel)
	pub := &fakePublisher{err: errors.New("redis down")}
	hub := NewHub(zap.New(core), pub, fakeSubscriber{})
	client := newTestClient(orgID)
	hub.Register(client)

	hub.Publish(orgID, EventInjuryFlagged, map[string]string{"k": "v"})

	require.Equal(t, 1, logs.FilterMessage("event publish failed, delivering locally").Len())
	select {
	case msg := <-client.send:
		assert.Equal(t, EventInjuryFlagged, msg.Event)
	default:
		t.Fatal("expected local delivery when the publish fails")
	}
}

func TestPublishWithoutBridgeBroadcastsLocally(t *testing.T) {
	orgID := uuid.New()
	hub := NewHub(zap.NewNop(), nil, nil)
	client := newTestClient(orgID)
	hub.Register(client)

	hub.Publish(orgID, EventRiskUpdated, map[string]string{"k": "v"})

	select {
	case msg := <-client.send:
		assert.Equal(t, EventRiskUpdated, msg.Event)
	default:
		t.Fatal("expected local delivery without a Redis bridge")
	}
}

func TestUnregisterCancelsLastSubscription(t *testing.T) {
	orgID := uuid.New()
	hub := NewHub(zap.NewNop(), nil, fakeSubscriber{})
	client := newTestClient(orgID)
	hub.Register(client)
	assert.Equal(t, 1, hub.ConnectionCount(orgID))
	hub.Unregister(client)
	assert.Equal(t, 0, hub.ConnectionCount(orgID))
}
