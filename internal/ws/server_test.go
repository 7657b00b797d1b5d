package ws

import (
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	diag "github.com/coreman2200/funtimes-backdrop/internal/diagnostics"
	"github.com/coreman2200/funtimes-backdrop/internal/frame"
	"github.com/coreman2200/funtimes-backdrop/internal/input"
	"github.com/coreman2200/funtimes-backdrop/internal/render"
	"github.com/coreman2200/funtimes-backdrop/internal/render/fake"
	"github.com/coreman2200/funtimes-backdrop/internal/scene"
	"github.com/coreman2200/funtimes-backdrop/internal/section"
	"github.com/coreman2200/funtimes-backdrop/internal/theme"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	srv    *Server
	http   *httptest.Server
	page   *section.Page
	disp   *input.Dispatcher
	themes *theme.Source
	diags  *diag.Buffer
	sched  *frame.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		disp:   input.NewDispatcher(render.Size{W: 640, H: 360}),
		themes: theme.NewSource(render.Dark),
		diags:  diag.NewBuffer(16),
		sched:  frame.NewManual(),
	}
	hero, _ := section.PresetByName("hero")
	contact, _ := section.PresetByName("contact")
	f.page = section.NewPage([]section.Preset{hero, contact}, f.themes, f.disp,
		section.WithReporter(f.diags.Reporter()),
		section.WithSceneOptions(scene.WithScheduler(f.sched), scene.WithBackend(fake.Backend(nil))))
	f.srv = NewServer(f.page, f.themes, f.disp, f.diags, zerolog.Nop())
	f.srv.SetFrameInterval(0)
	f.http = httptest.NewServer(f.srv.Handler())
	t.Cleanup(func() {
		require.NoError(t, f.srv.Close())
		f.http.Close()
		require.NoError(t, f.page.Unmount())
	})
	return f
}

func (f *fixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestFramesTopologyAndBroadcast(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t, "/ws/frames")

	var top struct {
		Theme    string `json:"theme"`
		Sections []struct {
			Name string `json:"name"`
			Live bool   `json:"live"`
		} `json:"sections"`
	}
	readJSON(t, c, &top)
	assert.Equal(t, "dark", top.Theme)
	require.Len(t, top.Sections, 2)
	assert.Equal(t, "hero", top.Sections[0].Name)
	assert.True(t, top.Sections[0].Live)

	require.Eventually(t, func() bool {
		f.srv.mu.RLock()
		defer f.srv.mu.RUnlock()
		return len(f.srv.clients) == 1
	}, time.Second, 10*time.Millisecond)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	require.NoError(t, f.srv.WriteFrame(scene.Frame{Scene: "hero", Seq: 7, Image: img}))

	var msg FrameMsg
	readJSON(t, c, &msg)
	assert.Equal(t, "hero", msg.Section)
	assert.Equal(t, uint64(7), msg.Seq)
	assert.Equal(t, uint64(1), msg.FrameID)
	assert.NotEmpty(t, msg.PNG)
}

func TestFramesThrottled(t *testing.T) {
	f := newFixture(t)
	f.srv.SetFrameInterval(time.Hour)
	c := f.dial(t, "/ws/frames")
	var top map[string]any
	readJSON(t, c, &top)
	require.Eventually(t, func() bool {
		f.srv.mu.RLock()
		defer f.srv.mu.RUnlock()
		return len(f.srv.clients) == 1
	}, time.Second, 10*time.Millisecond)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 5; i++ {
		require.NoError(t, f.srv.WriteFrame(scene.Frame{Scene: "hero", Image: img}))
	}
	f.srv.mu.RLock()
	assert.Equal(t, uint64(1), f.srv.frameID)
	f.srv.mu.RUnlock()
}

func TestInputDrivesDispatcherAndSections(t *testing.T) {
	f := newFixture(t)
	c := f.dial(t, "/ws/input")

	send := func(m InputMsg) {
		b, err := json.Marshal(m)
		require.NoError(t, err)
		require.NoError(t, c.WriteMessage(websocket.TextMessage, b))
	}
	send(InputMsg{Type: "resize", W: 1024, H: 768})
	send(InputMsg{Type: "hover", Section: "hero", On: true})
	send(InputMsg{Type: "pointer", Section: "hero", X: 400, Y: 0})

	hero, ok := f.page.Section("hero")
	require.True(t, ok)
	require.Eventually(t, func() bool {
		return hero.Controller().AnimationState().Pointer == render.Vec2{X: 1, Y: 1}
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, render.Size{W: 1024, H: 768}, f.disp.Size())

	contact, _ := f.page.Section("contact")
	assert.Equal(t, render.Size{W: 1024, H: 768}, contact.Controller().Size())

	send(InputMsg{Type: "hover", Section: "hero", On: false})
	require.Eventually(t, func() bool {
		return !hero.Controller().AnimationState().Hovering
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.http.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var h struct {
		Theme    string   `json:"theme"`
		Live     []string `json:"live"`
		Degraded []string `json:"degraded"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&h))
	assert.Equal(t, "dark", h.Theme)
	assert.Equal(t, []string{"hero", "contact"}, h.Live)
	assert.Empty(t, h.Degraded)
}

func TestThemeToggleRebuildsScenes(t *testing.T) {
	f := newFixture(t)
	hero, _ := f.page.Section("hero")
	before := hero.Controller()

	resp, err := http.Post(f.http.URL+"/theme", "application/json", nil)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "light", body["theme"])

	assert.Equal(t, scene.StateDestroyed, before.State())
	assert.Equal(t, render.Light, hero.Controller().Theme())

	req, _ := http.NewRequest(http.MethodDelete, f.http.URL+"/theme", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDiagFeed(t *testing.T) {
	f := newFixture(t)
	f.diags.Push(diag.Recovered("hero"))
	c := f.dial(t, "/ws/diag")

	var d diag.Diagnostic
	readJSON(t, c, &d)
	assert.Equal(t, diag.CodeSceneRecovered, d.Code)

	f.diags.Push(diag.FrameFailed("contact", errors.New("lost context")))
	readJSON(t, c, &d)
	assert.Equal(t, diag.CodeFrameFailed, d.Code)
	assert.Equal(t, "contact", d.Section)
}
