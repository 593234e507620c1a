// statesync/client.go
package statesync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/network"
	"github.com/wfunc/mahjongtable/session"
)

type ClientConfig struct {
	URL       string
	Username  string
	Heartbeat time.Duration
}

// Client 连接状态同步服务，在单个 goroutine 中顺序分发事件
type Client struct {
	cfg     ClientConfig
	handler Handler
	dialer  *websocket.Dialer
	session atomic.Pointer[session.Session]
}

func NewClient(cfg ClientConfig, handler Handler) *Client {
	return &Client{
		cfg:     cfg,
		handler: handler,
		dialer:  websocket.DefaultDialer,
	}
}

// Session returns the current connection session, nil before Run dials.
func (c *Client) Session() *session.Session {
	return c.session.Load()
}

// Run dials the feed, joins the table and dispatches events until ctx is
// cancelled or the connection drops. Handler errors are logged and do not
// stop the loop.
func (c *Client) Run(ctx context.Context) error {
	conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.URL, err)
	}
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.SetUsername(c.cfg.Username)
	c.session.Store(sess)

	logger.Log.Infof("Connected to %s, session ID: %s", c.cfg.URL, sess.GetID())

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			wsConn.CloseGracefully()
		case <-done:
			wsConn.Close()
		}
	}()

	if err := sess.SendJSON(network.MsgTypeJoinGame, JoinGame{Username: c.cfg.Username}); err != nil {
		return fmt.Errorf("join game: %w", err)
	}

	if c.cfg.Heartbeat > 0 {
		wsConn.SetHeartbeat(c.cfg.Heartbeat)
		go c.heartbeat(sess, done)
	}

	for {
		packet, err := wsConn.ReadPacket()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read packet: %w", err)
		}
		sess.Received()

		if packet.MsgID == network.MsgTypeHeartbeat {
			continue
		}

		ev := Event{
			Name:       network.EventName(packet.MsgID),
			Payload:    append(json.RawMessage(nil), packet.Data...),
			ReceivedAt: time.Now(),
		}
		if err := c.handler.Handle(ev); err != nil {
			logger.Log.Errorf("Handling %s failed: %v", ev.Name, err)
		}
	}
}

func (c *Client) heartbeat(sess *session.Session, done <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.Heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := sess.Send(network.MsgTypeHeartbeat, nil); err != nil {
				logger.Log.Warnf("Heartbeat failed: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
