package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type MessageType string

const (
	// Client -> Server
	MessageTypeStart  MessageType = "start"
	MessageTypeAnswer MessageType = "answer"
	MessageTypePing   MessageType = "ping"

	// Server -> Client
	MessageTypeView         MessageType = "view"
	MessageTypeAnswerResult MessageType = "answer_result"
	MessageTypeResult       MessageType = "result"
	MessageTypeError        MessageType = "error"
	MessageTypePong         MessageType = "pong"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

type inboundMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type StartPayload struct {
	Custom *config.CustomConfig `json:"custom,omitempty"`
}

type AnswerPayload struct {
	Index int `json:"index"`
}

type AnswerResultPayload struct {
	Outcome string        `json:"outcome"`
	View    mathgame.View `json:"view"`
}

type ResultPayload struct {
	SessionID string                `json:"sessionId"`
	GameType  string                `json:"gameType"`
	Score     int                   `json:"score"`
	Points    int                   `json:"points"`
	Custom    bool                  `json:"custom"`
	Standing  *leaderboard.Standing `json:"standing,omitempty"`
	Error     *errors.Error         `json:"error,omitempty"`
}

// Play runs one player's sessions over a WebSocket. The server owns the
// clock: it streams a view every tick and ranks the result at game over
// under the identity the connection was opened with.
func (a *API) Play(c *gin.Context) {
	op, err := mathgame.ParseGameType(c.Param("gameType"))
	if err != nil {
		a.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	user, _ := auth.UserFromContext(c.Request.Context())
	a.logger.Debug("player connected", "game", op.GameType(), "user", user)

	p := &player{
		api:  a,
		op:   op,
		conn: conn,
		ctx:  context.WithoutCancel(c.Request.Context()),
		send: make(chan Message, 32),
		done: make(chan struct{}),
	}

	go p.writePump()
	p.readPump()
}

type player struct {
	api  *API
	op   mathgame.Operator
	conn *websocket.Conn
	ctx  context.Context
	send chan Message
	done chan struct{}

	mu       sync.Mutex
	session  *mathgame.Session
	stopTick chan struct{}
}

func (p *player) readPump() {
	defer func() {
		close(p.done)
		p.stopSession()
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				p.api.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid message format")))
			continue
		}

		switch msg.Type {
		case MessageTypeStart:
			p.start(msg.Payload)
		case MessageTypeAnswer:
			p.answer(msg.Payload)
		case MessageTypePing:
			p.push(Message{Type: MessageTypePong})
		default:
			p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("unknown message type %q", msg.Type)))
		}
	}
}

func (p *player) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case m := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-p.done:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			p.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// push queues m for the writer. It gives up once the connection is gone.
func (p *player) push(m Message) {
	select {
	case p.send <- m:
	case <-p.done:
	}
}

func (p *player) sendError(err error) {
	p.push(Message{Type: MessageTypeError, Payload: errors.Convert(err)})
}

// start begins a session. A new one may only start once the previous one is over.
func (p *player) start(raw json.RawMessage) {
	var req StartPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid start payload")))
			return
		}
	}

	p.mu.Lock()
	if p.session != nil && !p.session.View().GameOver {
		p.mu.Unlock()
		p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("session already running")))
		return
	}
	p.stopSessionLocked()

	dm := config.NewDifficultyManager(p.api.math)
	if req.Custom != nil {
		dm = config.NewCustomDifficultyManager(p.api.math, *req.Custom)
	}

	s, err := mathgame.NewSession(mathgame.Options{
		Operator:   p.op,
		Difficulty: dm,
		OnComplete: p.complete,
	})
	if err != nil {
		p.mu.Unlock()
		p.sendError(err)
		return
	}

	stop := make(chan struct{})
	p.session, p.stopTick = s, stop
	p.mu.Unlock()

	p.api.sessions.SessionStarted(p.op.GameType())
	p.push(Message{Type: MessageTypeView, Payload: s.View()})

	go p.tickLoop(s, stop)
}

func (p *player) answer(raw json.RawMessage) {
	var req AnswerPayload
	if err := json.Unmarshal(raw, &req); err != nil {
		p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("invalid answer payload")))
		return
	}

	p.mu.Lock()
	s := p.session
	p.mu.Unlock()

	if s == nil {
		p.sendError(errors.New(errors.CodeInvalidArgument, errors.WithMessagef("no session running")))
		return
	}

	out, err := s.Answer(req.Index)
	if err != nil && out == mathgame.OutcomeNone {
		p.sendError(err)
		return
	}

	p.push(Message{Type: MessageTypeAnswerResult, Payload: AnswerResultPayload{
		Outcome: out.String(),
		View:    s.View(),
	}})
}

func (p *player) tickLoop(s *mathgame.Session, stop <-chan struct{}) {
	t := time.NewTicker(mathgame.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-p.done:
			return
		case <-t.C:
			s.Tick()
			v := s.View()
			p.push(Message{Type: MessageTypeView, Payload: v})
			if v.GameOver {
				return
			}
		}
	}
}

// complete ranks a finished session. Ranking failures are reported to the
// player; the session itself has already ended.
func (p *player) complete(res mathgame.Result) {
	p.api.sessions.SessionFinished(res.GameType, res.Score)

	payload := ResultPayload{
		SessionID: res.SessionID,
		GameType:  res.GameType,
		Score:     res.Score,
		Points:    res.Points,
		Custom:    res.Custom,
	}

	st, err := p.api.ls.Submit(p.ctx, leaderboard.SubmitRequest{
		GameType: res.GameType,
		Score:    res.Score,
		Points:   res.Points,
	})
	if err != nil {
		payload.Error = errors.Convert(err)
	} else {
		payload.Standing = &st
	}

	p.push(Message{Type: MessageTypeResult, Payload: payload})
}

func (p *player) stopSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopSessionLocked()
}

func (p *player) stopSessionLocked() {
	if p.session == nil {
		return
	}
	p.session.Close()
	close(p.stopTick)
	p.session, p.stopTick = nil, nil
}
