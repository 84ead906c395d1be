package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/voyagent/tripmend/core/events"
	"github.com/voyagent/tripmend/core/model"
	"github.com/voyagent/tripmend/core/session"
	"github.com/voyagent/tripmend/infra/logger"
	"github.com/voyagent/tripmend/internal/eventbus"
)

// conditionMessage is the inbound payload on <prefix>/<session>/conditions.
type conditionMessage struct {
	Crowd           float64 `json:"crowd"`
	Weather         string  `json:"weather"`
	WeatherSeverity float64 `json:"weather_severity"`
	Traffic         float64 `json:"traffic"`
	NextStop        string  `json:"next_stop"`
}

// eventMessage is the inbound payload on <prefix>/<session>/events.
type eventMessage struct {
	Type     string         `json:"type"`
	Stop     string         `json:"stop"`
	Severity float64        `json:"severity"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// Feed bridges the broker and the session manager. Each inbound message runs
// one decision cycle; outcomes are published to the pending and plan topics
// of the originating session.
type Feed struct {
	cli     pahoClient
	manager *session.Manager
	prefix  string
	qos     map[string]byte
	logger  logger.Logger

	pending    *eventbus.TypedBus[events.PendingEvent]
	pendingSub <-chan events.PendingEvent
}

// NewFeed connects to the broker and subscribes to the condition and event
// topics of all sessions. When pending is non-nil the feed also mirrors
// pending-decision lifecycle events to the session decision topics, which
// covers resolutions made through the HTTP surface.
func NewFeed(cfg Config, manager *session.Manager, pending *eventbus.TypedBus[events.PendingEvent]) (*Feed, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_feed")
	f := &Feed{
		manager: manager,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		logger:  log,
		pending: pending,
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		for topic, handler := range map[string]paho.MessageHandler{
			f.prefix + "/+/conditions": f.onConditions,
			f.prefix + "/+/events":     f.onEvent,
		} {
			if token := c.Subscribe(topic, f.qosFor("subscribe"), handler); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe %s: %v", topic, token.Error())
			}
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	f.cli = c
	if f.pending != nil {
		f.pendingSub = f.pending.Subscribe()
		go f.watchPending()
	}
	return f, nil
}

// watchPending drains the typed bus until it closes, pushing each lifecycle
// event to the originating session's decisions topic.
func (f *Feed) watchPending() {
	for e := range f.pendingSub {
		f.publishJSON(fmt.Sprintf("%s/%s/decisions", f.prefix, e.SessionID), e)
	}
}

func (f *Feed) onConditions(_ paho.Client, msg paho.Message) {
	sessionID, ok := f.sessionID(msg.Topic())
	if !ok {
		return
	}
	var m conditionMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		f.logger.Errorf("decode conditions: %v", err)
		return
	}
	s, ok := f.manager.Get(sessionID)
	if !ok {
		f.logger.Warnf("conditions for unknown session %s", sessionID)
		return
	}
	readings := model.ConditionReadings{
		CrowdLevel:      m.Crowd,
		Weather:         parseWeather(m.Weather),
		WeatherSeverity: m.WeatherSeverity,
		TrafficLevel:    m.Traffic,
	}
	out, err := s.CheckConditions(context.Background(), readings, m.NextStop)
	if err != nil {
		f.logger.Errorf("check conditions for %s: %v", sessionID, err)
		return
	}
	f.publishOutcome(sessionID, out)
}

func (f *Feed) onEvent(_ paho.Client, msg paho.Message) {
	sessionID, ok := f.sessionID(msg.Topic())
	if !ok {
		return
	}
	var m eventMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		f.logger.Errorf("decode event: %v", err)
		return
	}
	s, ok := f.manager.Get(sessionID)
	if !ok {
		f.logger.Warnf("event for unknown session %s", sessionID)
		return
	}
	ev := model.Event{
		Type:     model.ParseEventType(m.Type),
		Stop:     m.Stop,
		Severity: m.Severity,
		Text:     m.Text,
		Metadata: m.Metadata,
	}
	out, err := s.Event(context.Background(), ev)
	if err != nil {
		f.logger.Errorf("event %s for %s: %v", m.Type, sessionID, err)
		return
	}
	f.publishOutcome(sessionID, out)
}

// publishOutcome sends the pending decision or the updated plan back to the
// session topics. Silent outcomes publish nothing.
func (f *Feed) publishOutcome(sessionID string, out session.Outcome) {
	if out.Pending != nil {
		f.publishJSON(fmt.Sprintf("%s/%s/pending", f.prefix, sessionID), out.Pending)
		f.manager.PendingSessions()
	}
	if out.Plan != nil {
		f.publishJSON(fmt.Sprintf("%s/%s/plan", f.prefix, sessionID), out.Plan)
	}
}

func (f *Feed) publishJSON(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		f.logger.Errorf("encode %s: %v", topic, err)
		return
	}
	if token := f.cli.Publish(topic, f.qosFor("publish"), false, payload); token.Wait() && token.Error() != nil {
		f.logger.Errorf("publish %s: %v", topic, token.Error())
	}
}

// sessionID extracts the session segment of <prefix>/<session>/<leaf>.
func (f *Feed) sessionID(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != f.prefix {
		return "", false
	}
	return parts[1], true
}

func (f *Feed) qosFor(kind string) byte {
	if q, ok := f.qos[kind]; ok {
		return q
	}
	return 0
}

// Disconnect gracefully closes the MQTT connection.
func (f *Feed) Disconnect() {
	if f.pending != nil && f.pendingSub != nil {
		f.pending.Unsubscribe(f.pendingSub)
	}
	if f.cli != nil && f.cli.IsConnected() {
		f.cli.Disconnect(250)
	}
}

func parseWeather(s string) model.WeatherCondition {
	switch s {
	case "cloudy":
		return model.WeatherCloudy
	case "rain":
		return model.WeatherRain
	case "storm":
		return model.WeatherStorm
	case "heat":
		return model.WeatherHeat
	default:
		return model.WeatherClear
	}
}
