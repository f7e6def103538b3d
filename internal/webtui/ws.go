package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

type wsMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts requests without an Origin and those whose Origin host
// equals the request host.
func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, strings.TrimSpace(r.Host))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ptmx, cmd, cleanup, err := s.startPTYSession()
	if err != nil {
		s.log.Error("pty session failed", "error", err)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start session: "+err.Error()))
		return
	}
	defer cleanup()
	s.log.Info("pty session started", "pid", cmd.Process.Pid, "remote", r.RemoteAddr)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpPTYToWS(ctx, ptmx, conn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpWSToPTY(ctx, conn, ptmx)
	}()

	select {
	case <-ctx.Done():
	case <-errCh:
	}
	cancel()

	_ = cmd.Process.Kill()
	// Unblock the reader side.
	_ = conn.Close()
	_ = ptmx.Close()
	wg.Wait()
	s.log.Info("pty session ended", "pid", cmd.Process.Pid)
}

// command builds the console subprocess. No subcommand means the interactive TUI.
func (s *Server) command() (*exec.Cmd, error) {
	exe, err := s.executable()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(exe)
	env := append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)
	if v := strings.TrimSpace(s.cfg.APIURL); v != "" {
		env = append(env, "MBKM_API_URL="+v)
	}
	if v := strings.TrimSpace(s.cfg.APIToken); v != "" {
		env = append(env, "MBKM_API_TOKEN="+v)
	}
	if v := strings.TrimSpace(s.cfg.ConfigDir); v != "" {
		env = append(env, "MBKM_CONFIG_DIR="+v)
	}
	cmd.Env = env
	return cmd, nil
}

func (s *Server) startPTYSession() (*os.File, *exec.Cmd, func(), error) {
	cmd, err := s.command()
	if err != nil {
		return nil, nil, nil, err
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 120, Rows: 40})
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}

	return ptmx, cmd, cleanup, nil
}

func pumpPTYToWS(ctx context.Context, ptmx io.Reader, conn *websocket.Conn) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// terminal is what the websocket side writes into: keystrokes and resizes.
type terminal interface {
	io.Writer
	Resize(cols, rows int) error
}

type ptyTerminal struct{ f *os.File }

func (t ptyTerminal) Write(p []byte) (int, error) { return t.f.Write(p) }

func (t ptyTerminal) Resize(cols, rows int) error {
	return pty.Setsize(t.f, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

func pumpWSToPTY(ctx context.Context, conn *websocket.Conn, ptmx *os.File) error {
	return pumpWS(ctx, conn, ptyTerminal{f: ptmx})
}

func pumpWS(ctx context.Context, conn *websocket.Conn, term terminal) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if err := handleFrame(term, mt, data); err != nil {
			return err
		}
	}
}

// handleFrame applies one websocket frame. Control messages are JSON text;
// keystroke frames are plain text or binary.
func handleFrame(term terminal, mt int, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if mt == websocket.TextMessage && data[0] == '{' {
		var m wsMsg
		if err := json.Unmarshal(data, &m); err != nil {
			return nil
		}
		if strings.EqualFold(strings.TrimSpace(m.Type), "resize") && m.Cols > 0 && m.Rows > 0 {
			_ = term.Resize(m.Cols, m.Rows)
		}
		return nil
	}
	_, err := term.Write(data)
	return err
}
