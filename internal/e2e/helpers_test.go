package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cleepadm/internal/httpapi"
	"cleepadm/internal/manager"
	"cleepadm/internal/push"
	"cleepadm/internal/rpc"
	"cleepadm/pkg/types"
)

// backend is an HTTP stand-in for the device: a command endpoint and a push websocket.
type backend struct {
	mu       sync.Mutex
	sys      types.SystemConfig
	commands []types.CommandRequest
	frames   chan types.PushMessage
	srv      *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		sys:    types.SystemConfig{BackupDelay: 15, Version: "0.1.0", EventsNotRenderable: []types.RenderingPair{}},
		frames: make(chan types.PushMessage, 16),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/command", b.command)
	upgrader := websocket.Upgrader{}
	mux.HandleFunc("/push", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			select {
			case <-r.Context().Done():
				return
			case m := <-b.frames:
				if err := conn.WriteJSON(m); err != nil {
					return
				}
			}
		}
	})
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) command(w http.ResponseWriter, r *http.Request) {
	var req types.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands = append(b.commands, req)

	var data any
	switch req.Command {
	case "get_module_config":
		data = b.sys
	case "get_modules":
		data = map[string]types.ModuleInfo{"system": {Installed: true, Core: true}}
	case "get_drivers":
		data = []types.DriverInfo{}
	case "get_events":
		data = map[string]types.EventInfo{
			"system.alert.memory": {Profiles: []string{"AlertProfile"}},
			"sensors.motion.on":   {Profiles: []string{"MotionProfile"}},
		}
	case "get_renderers":
		data = map[string][]string{"sms": {"AlertProfile"}, "display": {"AlertProfile", "MotionProfile"}}
	case "get_modules_debug":
		data = map[string]types.ModuleDebug{}
	case "set_event_renderable":
		p := types.RenderingPair{
			Renderer: req.Params["renderer_name"].(string),
			Event:    req.Params["event_name"].(string),
		}
		out := []types.RenderingPair{}
		for _, q := range b.sys.EventsNotRenderable {
			if q != p {
				out = append(out, q)
			}
		}
		if renderable, _ := req.Params["renderable"].(bool); !renderable {
			out = append(out, p)
		}
		b.sys.EventsNotRenderable = out
		data = out
	}
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(types.CommandResponse{Data: raw})
}

func (b *backend) count(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.commands {
		if c.Command == name {
			n++
		}
	}
	return n
}

func (b *backend) setNeedRestart(v bool) {
	b.mu.Lock()
	b.sys.NeedRestart = v
	b.mu.Unlock()
}

func (b *backend) push(t *testing.T, event string, params any) {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal push: %v", err)
	}
	b.frames <- types.PushMessage{Event: event, Params: raw}
}

// newStack wires the real rpc client, manager, push client and HTTP mux against b.
func newStack(t *testing.T, b *backend) (*httptest.Server, *manager.Manager) {
	t.Helper()
	log := zerolog.Nop()
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Commander:     rpc.NewClient(b.srv.URL, 2*time.Second, log),
		Logger:        log,
		ReloadTimeout: 2 * time.Second,
	})
	pc := push.NewClient("ws"+strings.TrimPrefix(b.srv.URL, "http")+"/push", func(n push.Notification) {
		_ = mgr.Enqueue(n)
	}, log)
	mgr.SetPushProbe(pc.Connected)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); mgr.Run(ctx) }()
	go func() { defer wg.Done(); pc.Run(ctx) }()

	srv := httptest.NewServer(httpapi.NewMux(mgr))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		wg.Wait()
	})
	waitFor(t, "ready and connected", func() bool { return mgr.Ready() && pc.Connected() })
	return srv, mgr
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("%s: condition not met in time", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func httpGet(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decode %s: %v body=%s", url, err, string(body))
		}
	}
	return resp
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
