package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/models"
	"github.com/wfunc/mahjongtable/scene"
	"github.com/wfunc/mahjongtable/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
	server   *rpc.Server
}

// NewServer listens on addr and registers the scene service.
func NewServer(addr string, svc *SceneService) (*Server, error) {
	server := rpc.NewServer()
	if err := server.RegisterName("SceneService", svc); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  listener.Addr().String(),
		server:   server,
	}, nil
}

func (s *Server) Addr() string {
	return s.address
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go s.server.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsSource is the read side of the scene controller.
type StatsSource interface {
	Stats() scene.Stats
}

// SceneService exposes scene status over net/rpc.
type SceneService struct {
	scene    StatsSource
	sessions *services.SessionService
}

func NewSceneService(source StatsSource, sessions *services.SessionService) *SceneService {
	return &SceneService{scene: source, sessions: sessions}
}

// StatusArgs 仅标识调用方，gob 不接受空结构体
type StatusArgs struct {
	Caller string
}

type StatusReply struct {
	Stats scene.Stats
}

// Status returns the lifecycle and entity counts of the running scene.
func (s *SceneService) Status(args *StatusArgs, reply *StatusReply) error {
	reply.Stats = s.scene.Stats()
	return nil
}

type SessionsArgs struct {
	Limit int
}

type SessionsReply struct {
	Summary models.SessionSummary
	Records []models.SessionRecord
}

// Sessions returns recent view sessions and their summary.
func (s *SceneService) Sessions(args *SessionsArgs, reply *SessionsReply) error {
	records, err := s.sessions.Recent(args.Limit)
	if err != nil {
		return err
	}
	summary, err := s.sessions.Summary(args.Limit)
	if err != nil {
		return err
	}
	reply.Records = records
	reply.Summary = summary
	return nil
}
