// Package dashboard serves a single operator page visualizing one
// planner's live search: the root action-value table and belief
// histogram, pushed over a websocket as the planning loop runs.
//
// Grounded on tabular/server/server.go; routing is upgraded from bare
// net/http to gorilla/mux so the pack's mux dependency is exercised
// (tabular/server/server.go registers both its routes on the default
// http.ServeMux, which mux's Router replaces one-for-one).
package dashboard

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"pomcp/dashboard/planviews"
	"pomcp/dashboard/rootview"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
)

var upgrader = websocket.Upgrader{}

const (
	writeWait        = 1 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	closeGracePeriod = 10 * time.Second
	pubResolution    = 100 * time.Millisecond
	pingResolution   = 500 * time.Millisecond
)

// Server serves the planner dashboard to a single client over a single
// websocket; concurrent pages are not supported, matching the scope of
// tabular/server/server.go's own Server.
type Server struct {
	addr       string
	lastUpdate planviews.Snapshot
	rootView   *rootview.RootView
}

// NewServer builds the root view from a stream of planner snapshots and
// returns a Server ready to Serve.
func NewServer(
	ctx context.Context,
	addr string,
	initialSnapshot planviews.Snapshot,
	snapshots <-chan planviews.Snapshot,
) *Server {
	return &Server{
		addr:       addr,
		lastUpdate: initialSnapshot,
		rootView:   rootview.New(ctx, snapshots),
	}
}

// Serve registers the dashboard's routes and blocks serving them.
func (s *Server) Serve() error {
	r := mux.NewRouter()
	r.HandleFunc("/", s.serveIndex).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.serveWebsocket)

	if err := http.ListenAndServe(s.addr, r); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("upgrade:", err)
		return
	}
	defer closeWebsocket(ws)
	s.publishEleUpdates(r.Context(), ws)
}

// publishEleUpdates pushes view updates to the client, pinging/pong-
// monitoring the connection and throttling publication, the way
// tabular/server/server.go's publishEleUpdates does.
func (s *Server) publishEleUpdates(ctx context.Context, ws *websocket.Conn) {
	last := time.Now()
	pubCtx, cancelPub := context.WithCancel(ctx)
	defer cancelPub()
	pinger := channerics.NewTicker(pubCtx.Done(), pingResolution)
	lastPong := time.Now()

	pong := make(chan struct{})
	defer close(pong)
	ws.SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	go func() {
		for {
			select {
			case <-pubCtx.Done():
				return
			default:
				if _, _, err := ws.ReadMessage(); err != nil {
					cancelPub()
					if isClosure(err) {
						return
					}
					fmt.Println("read pump:", err)
					return
				}
			}
		}
	}()

	for {
		select {
		case <-pubCtx.Done():
			return
		case <-pinger:
			if time.Since(lastPong) > pingResolution*2 {
				return
			}
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				if isError(err) {
					fmt.Printf("ping failed: %T %v\n", err, err)
				}
				return
			}
		case <-pong:
			lastPong = time.Now()
		case updates := <-s.rootView.Updates():
			if time.Since(last) < pubResolution {
				break
			}
			last = time.Now()
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				fmt.Printf("failed to set deadline: %T %v\n", err, err)
				return
			}
			if err := ws.WriteJSON(updates); err != nil {
				if isError(err) {
					fmt.Printf("publish failed: %T %v\n", err, err)
				}
				return
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func closeWebsocket(ws *websocket.Conn) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, s.rootView, s.lastUpdate); err != nil {
		_, _ = w.Write([]byte(err.Error()))
	}
}

func renderTemplate(w io.Writer, rv *rootview.RootView, data interface{}) error {
	t := template.New("index.html")
	tname, err := rv.Parse(t)
	if err != nil {
		return err
	}
	if _, err := t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return err
	}
	return t.Execute(w, data)
}
