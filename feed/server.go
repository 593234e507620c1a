package feed

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/network"
	"github.com/wfunc/mahjongtable/session"
	"github.com/wfunc/mahjongtable/statesync"
)

// Server 开发用的状态同步服务，代替生产环境的游戏服务器
type Server struct {
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	table          *Table
	shutdownChan   chan struct{}
	shutdownOnce   sync.Once
}

func NewServer() *Server {
	return &Server{
		sessionManager: session.NewManager(),
		table:          NewTable(),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

func (s *Server) Table() *Table {
	return s.table
}

func (s *Server) Sessions() *session.Manager {
	return s.sessionManager
}

// Handler serves the websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) Start(addr string) error {
	logger.Log.Infof("Feed server listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownChan)
		for _, sess := range s.sessionManager.All() {
			sess.Close()
		}
	})
}

// Publish broadcasts the current table state to every session, then sends
// each seated player their own hand once the game has started.
func (s *Server) Publish() error {
	if err := s.BroadcastJSON(network.MsgTypeGameStateUpdate, s.table.State()); err != nil {
		return err
	}
	for _, seat := range s.table.Hands() {
		s.sendHand(seat)
	}
	return nil
}

// sendHand 机器人座位没有连接，直接跳过
func (s *Server) sendHand(seat SeatHand) {
	sess, ok := s.sessionManager.Get(seat.SessionID)
	if !ok {
		return
	}
	if err := sess.SendJSON(network.MsgTypeHandUpdate, seat.Update); err != nil {
		logger.Log.Warnf("Hand update to session %s failed: %v", seat.SessionID, err)
	}
}

func (s *Server) BroadcastJSON(msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.BroadcastToAll(msgID, data)
}

// BroadcastToAll sends to every session, skipping ones whose send fails.
func (s *Server) BroadcastToAll(msgID uint16, data []byte) error {
	for _, sess := range s.sessionManager.All() {
		if err := sess.Send(msgID, data); err != nil {
			logger.Log.Warnf("Broadcast to session %s failed: %v", sess.GetID(), err)
			continue
		}
	}
	return nil
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *Server) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			sess.Received()
			s.handlePacket(sess, packet)
		}
	}
}

func (s *Server) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Send(network.MsgTypeHeartbeat, nil)
	case network.MsgTypeJoinGame:
		s.handleJoin(sess, packet)
	case network.MsgTypeAddBots:
		s.handleAddBots()
	case network.MsgTypeStartGame:
		s.handleStart(sess)
	default:
		logger.Log.Infof("Unhandled message type: %s", network.EventName(packet.MsgID))
	}
}

func (s *Server) handleJoin(sess *session.Session, packet *network.Packet) {
	req := statesync.JoinGame{Username: "Guest"}
	if len(packet.Data) > 0 {
		if err := json.Unmarshal(packet.Data, &req); err != nil {
			logger.Log.Warnf("Bad join_game from %s: %v", sess.GetID(), err)
			return
		}
	}
	sess.SetUsername(req.Username)

	isNew, err := s.table.Join(req.Username, sess.GetID())
	if err != nil {
		s.sendError(sess, err)
		return
	}

	if !isNew {
		logger.Log.Infof("Player %s reconnected as session %s", req.Username, sess.GetID())
		sess.SendJSON(network.MsgTypeGameStateUpdate, s.table.State())
		for _, seat := range s.table.Hands() {
			if seat.SessionID == sess.GetID() {
				s.sendHand(seat)
			}
		}
		return
	}

	s.BroadcastJSON(network.MsgTypePlayerJoined, statesync.PlayerJoined{
		Username:       req.Username,
		CurrentPlayers: s.table.PlayerCount(),
	})
	s.Publish()
}

func (s *Server) handleAddBots() {
	for _, name := range s.table.FillWithBots() {
		s.BroadcastJSON(network.MsgTypePlayerJoined, statesync.PlayerJoined{
			Username:       name,
			CurrentPlayers: s.table.PlayerCount(),
		})
	}
	s.Publish()
}

func (s *Server) handleStart(sess *session.Session) {
	sel, err := s.table.Start()
	if err != nil {
		if errors.Is(err, ErrAlreadyStarted) {
			logger.Log.Infof("Start ignored: %v", err)
			return
		}
		s.sendError(sess, err)
		return
	}
	s.BroadcastJSON(network.MsgTypeDealerSelection, sel)
	s.Publish()
}

func (s *Server) sendError(sess *session.Session, err error) {
	sess.SendJSON(network.MsgTypeErrorMessage, statesync.ErrorMessage{Msg: err.Error()})
}
