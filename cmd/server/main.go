package main

import (
	"flag"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocksim/stocksim/simulator"
)

var indexTemplate *template.Template

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development
		return true
	},
}

// Client message types
type ClientMessage struct {
	Type   string               `json:"type"`
	Config *simulator.SimConfig `json:"config,omitempty"`
}

// Server message types
type ServerMessage struct {
	Type      string                    `json:"type"`
	Running   *bool                     `json:"running,omitempty"`
	Config    *simulator.SimConfig      `json:"config,omitempty"`
	Metrics   *simulator.Metrics        `json:"metrics,omitempty"`
	Snapshots []simulator.DailySnapshot `json:"snapshots,omitempty"`
	Error     string                    `json:"error,omitempty"`
}

// simState manages the simulation state and UI pacing
type simState struct {
	sim      *simulator.Simulator
	running  bool
	paused   bool
	sentDays int // Snapshot rows already streamed to the client
	mu       sync.Mutex
	stopCh   chan struct{}
}

func newSimState(config simulator.SimConfig) (*simState, error) {
	sim, err := simulator.NewSimulator(config)
	if err != nil {
		return nil, err
	}
	return &simState{
		sim:    sim,
		stopCh: make(chan struct{}),
	}, nil
}

// start begins the simulation (sets running flag)
func (s *simState) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	s.paused = false
}

// pause pauses the simulation
func (s *simState) pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// reset resets the simulation
func (s *simState) reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.paused = false
	s.sentDays = 0
	return s.sim.Reset()
}

// updateConfig updates the configuration and restarts the run
func (s *simState) updateConfig(config simulator.SimConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentDays = 0
	return s.sim.UpdateConfig(config)
}

// isRunning returns true if simulation is running and not paused
func (s *simState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && !s.paused
}

// getConfig returns the current simulator configuration
func (s *simState) getConfig() simulator.SimConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Config()
}

// step advances simulation by deltaDays (called by UI ticker). A fatal
// engine error (e.g. backlog divergence) stops the run; the error is
// returned so the client can display it.
func (s *simState) step(deltaDays float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.paused {
		return nil
	}
	if err := s.sim.Step(deltaDays); err != nil {
		s.running = false
		return err
	}
	return nil
}

// metrics returns current metrics
func (s *simState) metrics() *simulator.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim.Metrics()
}

// newSnapshots returns the daily log rows not yet streamed to the client
func (s *simState) newSnapshots() []simulator.DailySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.sim.Snapshots()
	if s.sentDays >= len(rows) {
		return nil
	}
	fresh := rows[s.sentDays:]
	s.sentDays = len(rows)
	return fresh
}

// stop signals the UI loop to stop
func (s *simState) stop() {
	close(s.stopCh)
}

// uiUpdateLoop periodically advances the simulation and sends updates to
// the client. This runs in its own goroutine and controls UI pacing.
func uiUpdateLoop(conn *safeConn, state *simState) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-state.stopCh:
			log.Println("UI update loop stopping")
			return

		case <-ticker.C:
			if !state.isRunning() {
				continue
			}

			// Advance simulation by 1 virtual day per tick
			if err := state.step(1.0); err != nil {
				log.Printf("Simulation stopped: %v", err)
				running := false
				errMsg := ServerMessage{
					Type:    "error",
					Running: &running,
					Error:   err.Error(),
				}
				if werr := conn.WriteJSON(errMsg); werr != nil {
					log.Printf("Error sending error message: %v", werr)
					return
				}
				continue
			}

			metrics := state.metrics()
			updatePrometheusMetrics(metrics)
			metricsMsg := ServerMessage{
				Type:    "metrics",
				Metrics: metrics,
			}
			if err := conn.WriteJSON(metricsMsg); err != nil {
				log.Printf("Error sending metrics: %v", err)
				return
			}

			if fresh := state.newSnapshots(); len(fresh) > 0 {
				snapshotMsg := ServerMessage{
					Type:      "snapshots",
					Snapshots: fresh,
				}
				if err := conn.WriteJSON(snapshotMsg); err != nil {
					log.Printf("Error sending snapshots: %v", err)
					return
				}
			}
		}
	}
}

// safeConn wraps a WebSocket connection with a mutex to prevent concurrent writes
type safeConn struct {
	*websocket.Conn
	writeMu sync.Mutex
}

func (sc *safeConn) WriteJSON(v interface{}) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.Conn.WriteJSON(v)
}

func sendStatus(conn *safeConn, running bool, config simulator.SimConfig) {
	statusMsg := ServerMessage{
		Type:    "status",
		Running: &running,
		Config:  &config,
	}
	if err := conn.WriteJSON(statusMsg); err != nil {
		log.Printf("Error sending status: %v", err)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	// Wrap connection with mutex for safe concurrent writes
	safeConn := &safeConn{Conn: conn}

	log.Println("Client connected")

	config := simulator.DefaultConfig()
	state, err := newSimState(config)
	if err != nil {
		log.Printf("Error creating simulator: %v", err)
		return
	}

	sendStatus(safeConn, false, config)

	// Start UI update loop
	go uiUpdateLoop(safeConn, state)

	// Handle messages from client
	for {
		var msg ClientMessage
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		log.Printf("Received command: %s", msg.Type)

		switch msg.Type {
		case "start":
			state.start()
			sendStatus(safeConn, true, state.getConfig())

		case "pause":
			state.pause()
			sendStatus(safeConn, false, state.getConfig())

		case "reset":
			if err := state.reset(); err != nil {
				log.Printf("Error resetting simulator: %v", err)
			}
			sendStatus(safeConn, false, state.getConfig())

		case "config_update":
			if msg.Config != nil {
				if err := state.updateConfig(*msg.Config); err != nil {
					log.Printf("Error updating config: %v", err)
				} else {
					sendStatus(safeConn, state.isRunning(), state.getConfig())
				}
			}
		}
	}

	// Clean up
	state.stop()
	log.Println("Client disconnected")
}

func serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		log.Printf("Error executing template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func quitHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Shutdown requested via /quitquitquit")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "Server shutting down...")

	go func() {
		time.Sleep(100 * time.Millisecond)
		log.Println("Server stopped")
		os.Exit(0)
	}()
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	templatePath := filepath.Join("templates", "index.html")
	var err error
	indexTemplate, err = template.ParseFiles(templatePath)
	if err != nil {
		log.Fatalf("Error loading template: %v", err)
	}
	log.Printf("Loaded template: %s", templatePath)

	initPrometheusMetrics()

	http.HandleFunc("/", serveHome)
	http.HandleFunc("/ws", handleWebSocket)
	http.HandleFunc("/quitquitquit", quitHandler)
	http.Handle("/metrics", promhttp.Handler())

	log.Printf("Server starting on http://localhost%s", *addr)
	log.Printf("WebSocket endpoint: ws://localhost%s/ws", *addr)
	log.Printf("Prometheus endpoint: http://localhost%s/metrics", *addr)
	log.Fatal(http.ListenAndServe(*addr, nil))
}
