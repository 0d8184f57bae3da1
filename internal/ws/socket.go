package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/zerolog/log"

	"github.com/Chuan-Peng-Lab/trialkit/internal/plugins/htmlresponse"
	"github.com/Chuan-Peng-Lab/trialkit/internal/session"
)

type ConnCtx struct {
	Code  string
	Token string
}

// Server bridges browser clients to trial sessions: rendered HTML flows
// out on trial:render, key presses and clicks flow back in through the
// session's engine.
type Server struct {
	SM     *session.Manager
	trials []htmlresponse.Params

	mu      sync.Mutex
	members map[string]map[string]socketio.Conn // sessionCode -> socketID -> Conn
}

func New(sm *session.Manager, trials []htmlresponse.Params) *Server {
	return &Server{SM: sm, trials: trials, members: make(map[string]map[string]socketio.Conn)}
}

// Mount attaches Socket.IO server with handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
	io := socketio.NewServer(nil)

	io.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext(&ConnCtx{})
		log.Info().Str("sid", s.ID()).Msg("socket connected")
		return nil
	})

	// session:start
	io.OnEvent("/", "session:start", func(s socketio.Conn) map[string]any {
		sess, err := srv.SM.CreateSession(srv.trials)
		if err != nil {
			return srv.err(s, "no_timeline", err.Error())
		}
		code := sess.Code

		sess.Surface().OnUpdate(func() {
			ix, total := sess.Index()
			srv.emitToSession(code, "trial:render", map[string]any{
				"html":  sess.Surface().Root().InnerHTML(),
				"trial": ix,
				"total": total,
			})
		})
		sess.OnTrialDone(func(ix int, r htmlresponse.Result) {
			srv.emitToSession(code, "trial:finish", map[string]any{"trial": ix, "result": r})
		})
		sess.OnFinished(func(results []htmlresponse.Result) {
			srv.emitToSession(code, "timeline:finish", map[string]any{
				"results": results,
				"status":  string(sess.Status()),
			})
		})

		s.SetContext(&ConnCtx{Code: code, Token: sess.Token})
		s.Join(code)
		srv.addMember(code, s)
		log.Info().Str("sid", s.ID()).Str("code", code).Msg("session:start")

		if err := sess.Start(); err != nil {
			return srv.err(s, "bad_request", err.Error())
		}
		return map[string]any{
			"sessionCode":      code,
			"participantToken": sess.Token,
			"trials":           len(srv.trials),
		}
	})

	// session:resume (reconnection)
	io.OnEvent("/", "session:resume", func(s socketio.Conn, payload struct {
		SessionCode string `json:"sessionCode"`
		Token       string `json:"token"`
	}) map[string]any {
		sess, err := srv.SM.Get(payload.SessionCode)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if payload.Token != sess.Token {
			return srv.err(s, "unauthorized", "Invalid participant token")
		}
		s.SetContext(&ConnCtx{Code: payload.SessionCode, Token: payload.Token})
		s.Join(payload.SessionCode)
		srv.addMember(payload.SessionCode, s)
		log.Info().Str("sid", s.ID()).Str("code", payload.SessionCode).Msg("session:resume")

		// the session's timers keep mutating the tree, so read through
		// the engine rather than straight off the socket goroutine
		html, ix, total := sess.Snapshot()
		s.Emit("trial:render", map[string]any{
			"html":  html,
			"trial": ix,
			"total": total,
		})
		if sess.Status() == session.StatusFinished {
			s.Emit("timeline:finish", map[string]any{
				"results": sess.Results(),
				"status":  string(sess.Status()),
			})
		}
		return map[string]any{"ok": true}
	})

	// response:key
	io.OnEvent("/", "response:key", func(s socketio.Conn, payload struct {
		Key string `json:"key"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := srv.SM.Get(ctx.Code)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		if payload.Key == "" {
			return srv.err(s, "bad_request", "Missing key")
		}
		sess.Engine().PressKey(payload.Key)
		return map[string]any{"ok": true}
	})

	// response:click
	io.OnEvent("/", "response:click", func(s socketio.Conn, payload struct {
		Index int `json:"index"`
	}) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := srv.SM.Get(ctx.Code)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		sess.Engine().Do(func() {
			if btn := sess.Surface().Root().ByID(htmlresponse.ButtonID(payload.Index)); btn != nil {
				btn.Click()
			}
		})
		return map[string]any{"ok": true}
	})

	// session:results
	io.OnEvent("/", "session:results", func(s socketio.Conn) map[string]any {
		ctx := s.Context().(*ConnCtx)
		sess, err := srv.SM.Get(ctx.Code)
		if err != nil {
			return srv.err(s, "session_not_found", "Session not found")
		}
		return map[string]any{
			"status":  string(sess.Status()),
			"results": sess.Results(),
		}
	})

	io.OnError("/", func(s socketio.Conn, e error) {
		log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
	})
	io.OnDisconnect("/", func(s socketio.Conn, reason string) {
		if ctx, ok := s.Context().(*ConnCtx); ok {
			if ctx.Code != "" {
				srv.removeMember(ctx.Code, s)
			}
		}
		log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
	})

	go io.Serve()

	// Mount to router
	r.GET("/socket.io/*any", gin.WrapH(io))
	r.POST("/socket.io/*any", gin.WrapH(io))

	// Basic CORS preflight for Socket.IO POST
	r.OPTIONS("/socket.io/*any", func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusNoContent)
	})

	return io
}

func (srv *Server) addMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.members[code] == nil {
		srv.members[code] = make(map[string]socketio.Conn)
	}
	srv.members[code][c.ID()] = c
}

func (srv *Server) removeMember(code string, c socketio.Conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if m := srv.members[code]; m != nil {
		delete(m, c.ID())
	}
}

// emitToSession fans an event out to every connection attached to the
// session. Display updates arrive here from engine callbacks, so the
// member table has its own lock.
func (srv *Server) emitToSession(code, event string, payload any) {
	srv.mu.Lock()
	conns := make([]socketio.Conn, 0, len(srv.members[code]))
	for _, c := range srv.members[code] {
		conns = append(conns, c)
	}
	srv.mu.Unlock()
	for _, c := range conns {
		c.Emit(event, payload)
	}
}

func (srv *Server) err(s socketio.Conn, code, message string) map[string]any {
	s.Emit("error", map[string]any{"code": code, "message": message})
	return map[string]any{"error": message}
}
