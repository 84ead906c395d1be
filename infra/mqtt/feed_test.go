package mqtt

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagent/tripmend/core/audit"
	"github.com/voyagent/tripmend/core/classify"
	"github.com/voyagent/tripmend/core/events"
	"github.com/voyagent/tripmend/core/executor"
	"github.com/voyagent/tripmend/core/metrics"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/repair"
	"github.com/voyagent/tripmend/core/replan"
	"github.com/voyagent/tripmend/core/session"
	"github.com/voyagent/tripmend/core/travel"
	"github.com/voyagent/tripmend/infra/logger"
	"github.com/voyagent/tripmend/internal/eventbus"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

type publishedMessage struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	published []publishedMessage
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = true
	return fakeToken{}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	c.published = append(c.published, publishedMessage{topic: topic, payload: payload.([]byte)})
	c.mu.Unlock()
	return fakeToken{}
}

func (c *fakeClient) messages() []publishedMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishedMessage(nil), c.published...)
}
func (c *fakeClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return fakeToken{}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

type stubReplanner struct{}

func (stubReplanner) Replan(model.StateView, []model.Candidate, replan.Constraints, bool) (model.DayPlan, error) {
	return model.DayPlan{}, nil
}

func newTestManager(t *testing.T) (*session.Manager, *session.Session) {
	t.Helper()
	log := logger.NopLogger{}
	eng := repair.NewEngine(repair.Config{}, travel.HaversineEstimator{}, log)
	disp := executor.NewDispatcher(eng, stubReplanner{}, audit.NopStore{}, metrics.NopSink{}, nil, log)
	mgr := session.NewManager(session.Deps{
		Dispatcher:   disp,
		Engine:       classify.NewDecisionEngine(log),
		Orchestrator: classify.NewOrchestrator(log),
		Log:          log,
	}, nil)

	day := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	plan := model.DayPlan{
		Date:   day,
		DayEnd: at(21, 0),
		Stops: []model.RoutePoint{
			{Name: "Old Town Walk", Activity: model.ActivitySightseeing, Arrival: at(10, 0), Departure: at(11, 0), VisitDuration: time.Hour, Rating: 4.8, Popularity: 0.8},
			{Name: "Flea Market", Activity: model.ActivityShopping, Arrival: at(11, 10), Departure: at(12, 10), VisitDuration: time.Hour, Rating: 2.0, Popularity: 0.1},
			{Name: "Harbor View", Activity: model.ActivitySightseeing, Arrival: at(12, 20), Departure: at(13, 20), VisitDuration: time.Hour, Rating: 4.0},
		},
	}
	s, err := mgr.Create(plan, at(9, 55), 200, nil)
	require.NoError(t, err)
	return mgr, s
}

func newTestFeed(t *testing.T) (*Feed, *fakeClient, *session.Session) {
	t.Helper()
	cli := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })

	mgr, s := newTestManager(t)
	f, err := NewFeed(Config{Broker: "tcp://broker:1883", ClientID: "test"}, mgr, nil)
	require.NoError(t, err)
	return f, cli, s
}

func TestFeedConditionsPublishesPending(t *testing.T) {
	f, cli, s := newTestFeed(t)

	payload, _ := json.Marshal(conditionMessage{Crowd: 0.9, NextStop: "Flea Market"})
	f.onConditions(nil, fakeMessage{topic: "trip/" + s.ID() + "/conditions", payload: payload})

	require.Len(t, cli.published, 1)
	assert.Equal(t, "trip/"+s.ID()+"/pending", cli.published[0].topic)
	assert.True(t, s.HasPending())

	var pd session.PendingDecision
	require.NoError(t, json.Unmarshal(cli.published[0].payload, &pd))
	assert.Equal(t, "Flea Market", pd.Stop)
}

func TestFeedEventPublishesNothingWhenSilent(t *testing.T) {
	f, cli, s := newTestFeed(t)

	payload, _ := json.Marshal(eventMessage{Type: "budget_check"})
	f.onEvent(nil, fakeMessage{topic: "trip/" + s.ID() + "/events", payload: payload})

	assert.Empty(t, cli.published)
	assert.False(t, s.HasPending())
}

func TestFeedMirrorsPendingLifecycle(t *testing.T) {
	cli := &fakeClient{}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })

	mgr, s := newTestManager(t)
	pending := eventbus.NewTyped[events.PendingEvent]()
	t.Cleanup(pending.Close)
	f, err := NewFeed(Config{Broker: "tcp://broker:1883", ClientID: "test"}, mgr, pending)
	require.NoError(t, err)
	t.Cleanup(f.Disconnect)

	pending.Publish(events.PendingEvent{SessionID: s.ID(), Stop: "Flea Market", Resolved: true, Resolution: "APPROVE"})

	require.Eventually(t, func() bool { return len(cli.messages()) == 1 }, time.Second, 5*time.Millisecond)
	msg := cli.messages()[0]
	assert.Equal(t, "trip/"+s.ID()+"/decisions", msg.topic)
	var e events.PendingEvent
	require.NoError(t, json.Unmarshal(msg.payload, &e))
	assert.True(t, e.Resolved)
	assert.Equal(t, "APPROVE", e.Resolution)
}

func TestFeedIgnoresUnknownSession(t *testing.T) {
	f, cli, _ := newTestFeed(t)

	payload, _ := json.Marshal(conditionMessage{Crowd: 0.9})
	f.onConditions(nil, fakeMessage{topic: "trip/nope/conditions", payload: payload})

	assert.Empty(t, cli.published)
}

func TestFeedIgnoresMalformedTopic(t *testing.T) {
	f, cli, _ := newTestFeed(t)

	f.onConditions(nil, fakeMessage{topic: "other/x/too/long", payload: []byte("{}")})

	assert.Empty(t, cli.published)
}

func TestLoadTLSConfigRequiresFiles(t *testing.T) {
	_, err := Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestParseWeather(t *testing.T) {
	assert.Equal(t, model.WeatherStorm, parseWeather("storm"))
	assert.Equal(t, model.WeatherClear, parseWeather(""))
	assert.Equal(t, model.WeatherClear, parseWeather("sunny-ish"))
}
