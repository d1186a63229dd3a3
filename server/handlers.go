package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wfunc/nightfall/logger"
	"github.com/wfunc/nightfall/models"
	"github.com/wfunc/nightfall/network"
	"github.com/wfunc/nightfall/room"
	"github.com/wfunc/nightfall/session"
)

type handlerFunc func(sess *session.Session, data json.RawMessage) error

func (s *GameServer) registerHandlers() {
	s.handlers = map[string]handlerFunc{
		network.MsgCreateRoom:  s.handleCreateRoom,
		network.MsgJoinRoom:    s.handleJoinRoom,
		network.MsgLeaveRoom:   s.handleLeaveRoom,
		network.MsgStartGame:   s.handleStartGame,
		network.MsgNightAction: s.handleNightAction,
		network.MsgDayChat:     s.handleDayChat,
		network.MsgAccuse:      s.handleAccuse,
		network.MsgVote:        s.handleVote,
		network.MsgAdvance:     s.handleAdvance,
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	wsConn := network.NewWSConnection(conn, s.cfg.Server.SendQueueSize)
	wsConn.SetHeartbeat(heartbeatInterval)
	s.handleConnection(wsConn)
}

// handleConnection owns one client until its read side fails.
func (s *GameServer) handleConnection(conn network.Connection) {
	sess := session.NewSession(uuid.NewString(), conn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", conn.RemoteAddr(), sess.GetID())
		s.leaveRoom(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		conn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
		}

		packet, err := conn.ReadPacket()
		if err != nil {
			if errors.Is(err, network.ErrMalformedPacket) {
				logger.Log.Debugf("Session %s sent a malformed frame: %v", sess.GetID(), err)
				continue
			}
			return
		}
		s.handlePacket(sess, packet)
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	handler, ok := s.handlers[packet.Type]
	if !ok {
		logger.Log.Debugf("Unknown message type %q from session %s", packet.Type, sess.GetID())
		return
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Log.Errorf("Panic handling %s from session %s: %v", packet.Type, sess.GetID(), rec)
		}
		s.monitor.ObserveMessageLatency(time.Since(start))
	}()

	sess.Touch()
	s.monitor.IncMessagesReceived(packet.Type)
	s.replyError(sess, packet.Type, handler(sess, packet.Data))
}

// replyError tells the requester about the errors players need to see and
// drops the rest.
func (s *GameServer) replyError(sess *session.Session, msgType string, err error) {
	if err == nil {
		return
	}
	code := room.ErrorCode(err, s.roomManager.Settings().MinPlayers)
	if code == "" {
		logger.Log.Debugf("Session %s %s dropped: %v", sess.GetID(), msgType, err)
		return
	}
	if sendErr := s.broadcaster.SendToSession(sess.GetID(), network.MsgErrorMessage, code); sendErr != nil {
		logger.Log.Debugf("Session %s error reply failed: %v", sess.GetID(), sendErr)
	}
}

func decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", network.ErrMalformedPacket, err)
	}
	return nil
}

// --- 房间成员 ---

func (s *GameServer) handleCreateRoom(sess *session.Session, data json.RawMessage) error {
	var req network.CreateRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	s.leaveRoom(sess)

	r := s.roomManager.CreateRoom(sess.GetID(), req.Name)
	s.broadcaster.Join(r.Code, sess.GetID())
	sess.SetRoomCode(r.Code)
	s.monitor.SetActiveRooms(s.roomManager.Count())
	return r.Welcome(sess.GetID())
}

func (s *GameServer) handleJoinRoom(sess *session.Session, data json.RawMessage) error {
	var req network.JoinRoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomManager.FindRoom(req.Code)
	if err != nil {
		return err
	}
	if sess.RoomCode() != r.Code {
		s.leaveRoom(sess)
	}

	// 先加入频道，Join 会立即广播房间状态
	s.broadcaster.Join(r.Code, sess.GetID())
	if err := r.Join(sess.GetID(), req.Name); err != nil {
		s.broadcaster.Leave(r.Code, sess.GetID())
		return err
	}
	sess.SetRoomCode(r.Code)
	return nil
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, _ json.RawMessage) error {
	s.leaveRoom(sess)
	return nil
}

// leaveRoom takes the session out of its current room, if any.
func (s *GameServer) leaveRoom(sess *session.Session) {
	code := sess.RoomCode()
	if code == "" {
		return
	}
	s.broadcaster.Leave(code, sess.GetID())
	s.roomManager.Leave(code, sess.GetID())
	sess.SetRoomCode("")
	s.monitor.SetActiveRooms(s.roomManager.Count())
}

// roomOf resolves the room a request is about. An empty code means the
// session's current room.
func (s *GameServer) roomOf(sess *session.Session, code string) (*room.Room, error) {
	if code == "" {
		code = sess.RoomCode()
	}
	return s.roomManager.FindRoom(code)
}

// --- 游戏动作 ---

func (s *GameServer) handleStartGame(sess *session.Session, data json.RawMessage) error {
	var req network.RoomRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.Start(sess.GetID())
}

func (s *GameServer) handleAdvance(sess *session.Session, data json.RawMessage) error {
	var req network.AdvanceRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.Advance(sess.GetID(), models.Phase(req.Phase))
}

func (s *GameServer) handleNightAction(sess *session.Session, data json.RawMessage) error {
	var req network.TargetRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.SubmitNightAction(sess.GetID(), req.Target)
}

func (s *GameServer) handleDayChat(sess *session.Session, data json.RawMessage) error {
	var req network.ChatRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.Chat(sess.GetID(), req.Message)
}

func (s *GameServer) handleAccuse(sess *session.Session, data json.RawMessage) error {
	var req network.TargetRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.Accuse(sess.GetID(), req.Target)
}

func (s *GameServer) handleVote(sess *session.Session, data json.RawMessage) error {
	var req network.TargetRequest
	if err := decode(data, &req); err != nil {
		return err
	}
	r, err := s.roomOf(sess, req.Code)
	if err != nil {
		return err
	}
	return r.SubmitVote(sess.GetID(), req.Target)
}
