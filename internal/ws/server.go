package ws

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	diag "github.com/coreman2200/funtimes-backdrop/internal/diagnostics"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
	"github.com/coreman2200/funtimes-backdrop/internal/section"
)

// DefaultFrameInterval throttles preview frames per section.
const DefaultFrameInterval = time.Second / 15

// Themes is the part of the theme source the server drives.
type Themes interface {
	Current() render.Theme
	Toggle() (render.Theme, error)
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Server is the browser preview: it streams scene frames out and feeds
// window and hover input back in.
type Server struct {
	mu          sync.RWMutex
	page        *section.Page
	themes      Themes
	disp        *input.Dispatcher
	diags       *diag.Buffer
	log         zerolog.Logger
	interval    time.Duration
	startTime   time.Time
	frameID     uint64
	lastSent    map[string]time.Time
	clients     map[*websocket.Conn]*client
	diagClients map[*websocket.Conn]*client
	inClients   map[*websocket.Conn]*client
	unsubDiag   func()
	wg          sync.WaitGroup
	closed      bool
}

func NewServer(page *section.Page, themes Themes, disp *input.Dispatcher, diags *diag.Buffer, log zerolog.Logger) *Server {
	s := &Server{
		page:        page,
		themes:      themes,
		disp:        disp,
		diags:       diags,
		log:         log,
		interval:    DefaultFrameInterval,
		startTime:   time.Now(),
		lastSent:    map[string]time.Time{},
		clients:     map[*websocket.Conn]*client{},
		diagClients: map[*websocket.Conn]*client{},
		inClients:   map[*websocket.Conn]*client{},
	}
	if diags != nil {
		s.unsubDiag = diags.Subscribe(s.pushDiag)
	}
	return s
}

// SetFrameInterval changes the per-section throttle; zero sends every frame.
func (s *Server) SetFrameInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", s.HandleFramesWS)
	mux.HandleFunc("/ws/input", s.HandleInputWS)
	mux.HandleFunc("/ws/diag", s.HandleDiagWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/theme", s.HandleTheme)
	return mux
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// track registers conn in set and drains it until the peer goes away.
func (s *Server) track(conn *websocket.Conn, set map[*websocket.Conn]*client, onMsg func([]byte)) *client {
	c := &client{conn: conn}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	set[conn] = c
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if onMsg != nil {
				onMsg(data)
			}
		}
	}()
	return c
}

func (s *Server) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if c := s.track(conn, s.clients, nil); c != nil {
		s.sendTopology(c)
	}
}

func (s *Server) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := s.track(conn, s.diagClients, nil)
	if c == nil || s.diags == nil {
		return
	}
	for _, d := range s.diags.Recent() {
		b, _ := json.Marshal(d)
		if err := c.write(b); err != nil {
			return
		}
	}
}

func (s *Server) HandleInputWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.track(conn, s.inClients, s.applyInput)
}

// InputMsg is one browser event forwarded over /ws/input.
type InputMsg struct {
	Type    string  `json:"type"` // "resize" | "pointer" | "hover"
	Section string  `json:"section,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	W       float64 `json:"w,omitempty"`
	H       float64 `json:"h,omitempty"`
	On      bool    `json:"on,omitempty"`
}

func (s *Server) applyInput(data []byte) {
	var msg InputMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Debug().Err(err).Msg("bad input message")
		return
	}
	var sec *section.Section
	if msg.Section != "" && s.page != nil {
		sec, _ = s.page.Section(msg.Section)
	}
	switch msg.Type {
	case "resize":
		s.disp.Resize(msg.W, msg.H)
	case "pointer":
		s.disp.PointerMove(msg.X, msg.Y)
		if sec != nil {
			sec.PointerMove(msg.X, msg.Y)
		}
	case "hover":
		if sec == nil {
			return
		}
		if msg.On {
			sec.HoverEnter()
		} else {
			sec.HoverLeave()
		}
	default:
		s.log.Debug().Str("type", msg.Type).Msg("unknown input message")
	}
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := map[string]any{
		"frame_id": s.frameID,
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
	}
	s.mu.RUnlock()
	if s.themes != nil {
		resp["theme"] = s.themes.Current()
	}
	if s.page != nil {
		resp["live"] = s.page.Live()
		resp["degraded"] = s.page.Degraded()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HandleTheme reports the theme on GET and toggles it on POST.
func (s *Server) HandleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if _, err := s.themes.Toggle(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"theme": s.themes.Current()})
}

type sectionInfo struct {
	Name string     `json:"name"`
	Live bool       `json:"live"`
	Rect [4]float64 `json:"rect"`
}

func (s *Server) sendTopology(c *client) {
	top := map[string]any{"window": s.disp.Size()}
	if s.themes != nil {
		top["theme"] = s.themes.Current()
	}
	if s.page != nil {
		var secs []sectionInfo
		for _, sec := range s.page.Sections() {
			r := sec.Container().Rect()
			secs = append(secs, sectionInfo{Name: sec.Name(), Live: sec.Live(), Rect: [4]float64{r.X, r.Y, r.W, r.H}})
		}
		top["sections"] = secs
	}
	b, _ := json.Marshal(top)
	_ = c.write(b)
}

// FrameMsg is what /ws/frames clients receive per frame.
type FrameMsg struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	Section string `json:"section"`
	Seq     uint64 `json:"seq"`
	PNG     string `json:"png"`
}

// WriteFrame implements scene.Sink: throttled PNG broadcast.
func (s *Server) WriteFrame(f scene.Frame) error {
	now := time.Now()
	s.mu.Lock()
	if len(s.clients) == 0 || now.Sub(s.lastSent[f.Scene]) < s.interval {
		s.mu.Unlock()
		return nil
	}
	s.lastSent[f.Scene] = now
	s.frameID++
	id := s.frameID
	s.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, f.Image); err != nil {
		return err
	}
	b, err := json.Marshal(FrameMsg{
		T:       now.UnixNano(),
		FrameID: id,
		Section: f.Scene,
		Seq:     f.Seq,
		PNG:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if err != nil {
		return err
	}
	s.broadcast(s.clients, b)
	return nil
}

func (s *Server) broadcast(set map[*websocket.Conn]*client, b []byte) {
	s.mu.RLock()
	targets := make([]*client, 0, len(set))
	for _, c := range set {
		targets = append(targets, c)
	}
	s.mu.RUnlock()
	for _, c := range targets {
		if err := c.write(b); err != nil {
			s.log.Debug().Err(err).Msg("write frame")
		}
	}
}

func (s *Server) pushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	s.broadcast(s.diagClients, b)
}

// Close drops every client and waits for their readers to exit.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	var conns []*websocket.Conn
	for c := range s.clients {
		conns = append(conns, c)
	}
	for c := range s.diagClients {
		conns = append(conns, c)
	}
	for c := range s.inClients {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	if s.unsubDiag != nil {
		s.unsubDiag()
	}
	for _, c := range conns {
		c.Close()
	}
	s.wg.Wait()
	return nil
}
