package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/notifications"
)

// DefaultReconnectDelay is the fixed wait between a closed push channel and the next attempt
const DefaultReconnectDelay = 5 * time.Second

// State of the push channel
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

// String returns the string representation of a State
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Push keeps a push channel open for the lifetime of a context. Every close,
// failed dial or read error is followed by the same fixed delay and a new
// attempt; there is no backoff and no attempt limit.
type Push struct {
	URL   string
	Delay time.Duration

	// OnEvent receives every new_image message
	OnEvent func(notifications.Event)

	// OnState is notified on every state transition (optional)
	OnState func(State)
}

// Run blocks until ctx is done
func (p *Push) Run(ctx context.Context) error {
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}

	for {
		err := p.session(ctx)
		p.setState(StateClosed)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Debug().Err(err).Dur("delay", delay).Msg("push channel closed, reconnecting")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session dials once and reads until the connection ends
func (p *Push) session(ctx context.Context) error {
	p.setState(StateConnecting)

	conn, _, err := websocket.Dial(ctx, p.URL, nil)
	if err != nil {
		return err
	}
	defer conn.CloseNow()

	p.setState(StateOpen)

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return errors.New("server going away")
			}
			return err
		}
		if msgType != websocket.MessageText {
			continue
		}

		var event notifications.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warn().Err(err).Msg("malformed push message")
			continue
		}
		if event.Type == notifications.EventNewImage && p.OnEvent != nil {
			p.OnEvent(event)
		}
	}
}

func (p *Push) setState(s State) {
	if p.OnState != nil {
		p.OnState(s)
	}
}
