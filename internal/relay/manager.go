package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cardhub/internal/config"
	"cardhub/internal/game"
	"cardhub/internal/protocol"
)

var errDuplicateRelay = errors.New("relay id already registered")

// Manager owns the relay registry and the listening topology. In shared-port
// mode every relay hangs off one router under /ws/{relayID}; otherwise each
// relay gets its own port, assigned in spawn order. A relay whose listener
// fails to bind stays registered but inert.
type Manager struct {
	mu           sync.Mutex
	relays       map[string]*Relay
	connectors   map[string]*Connector
	servers      map[string]*http.Server
	ports        map[string]int
	nextPort     int
	lobbyHandler MessageHandler
	gameHook     func(r *Relay, gameID, lobbyID string)

	games    *game.Controller
	cfg      config.HubConfig
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewManager(relays map[string]*Relay, games *game.Controller, cfg config.HubConfig, log zerolog.Logger) *Manager {
	return &Manager{
		relays:     relays,
		connectors: map[string]*Connector{},
		servers:    map[string]*http.Server{},
		ports:      map[string]int{},
		nextPort:   cfg.RelayPortStart,
		games:      games,
		cfg:        cfg,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:        log.With().Str("component", "relay-manager").Logger(),
	}
}

// SetLobbyHandler injects the lobby controller. Done after construction
// because the controller itself needs the manager as its relay spawner.
func (m *Manager) SetLobbyHandler(h MessageHandler) {
	m.mu.Lock()
	m.lobbyHandler = h
	m.mu.Unlock()
}

// SetGameRelayHook registers a callback run after each game relay comes up,
// used to seat in-process bots.
func (m *Manager) SetGameRelayHook(hook func(r *Relay, gameID, lobbyID string)) {
	m.mu.Lock()
	m.gameHook = hook
	m.mu.Unlock()
}

// Routes registers the shared websocket endpoint. Only used in shared-port
// mode.
func (m *Manager) Routes(r chi.Router) {
	r.Get("/ws/{relayID}", func(w http.ResponseWriter, req *http.Request) {
		relay, ok := m.Get(chi.URLParam(req, "relayID"))
		if !ok {
			http.NotFound(w, req)
			return
		}
		relay.HandleWS(&m.upgrader, w, req)
	})
}

func (m *Manager) Get(relayID string) (*Relay, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.relays[relayID]
	return r, ok
}

func (m *Manager) SpawnLobbyRelay(lobbyID string) error {
	m.mu.Lock()
	handler := m.lobbyHandler
	m.mu.Unlock()
	return m.spawn(NewRelay(lobbyID, protocol.TypeLobby, handler, m.log))
}

// SpawnGameRelay brings up the relay for one game and links it back to its
// owning lobby relay. The connector dials in the background so a slow lobby
// never stalls the createNewGame pipeline.
func (m *Manager) SpawnGameRelay(gameID, lobbyID string) error {
	connector := NewConnector(m.relayURL(lobbyID), gameID, m.cfg.ConnectAttempts, m.cfg.ConnectInterval, m.log)
	handler := &gameHandler{games: m.games, gameID: gameID, lobbyID: lobbyID, link: connector}
	r := NewRelay(gameID, protocol.TypeGame, handler, m.log)
	if err := m.spawn(r); err != nil {
		return err
	}
	m.mu.Lock()
	m.connectors[gameID] = connector
	hook := m.gameHook
	m.mu.Unlock()
	if hook != nil {
		hook(r, gameID, lobbyID)
	}
	go func() {
		if err := connector.Connect(); err != nil {
			m.log.Error().Err(err).Str("game_id", gameID).Msg("lobby link never came up")
		}
	}()
	return nil
}

func (m *Manager) SpawnChatRelay(relayID string) error {
	return m.spawn(NewRelay(relayID, protocol.TypeChat, chatHandler{}, m.log))
}

func (m *Manager) SpawnDisplayRelay(relayID string) error {
	return m.spawn(NewRelay(relayID, protocol.TypeDisplayGame, displayHandler{games: m.games}, m.log))
}

// RemoveGameRelay tears the game relay down: clients are disconnected, the
// lobby link is closed, a dedicated listener is stopped.
func (m *Manager) RemoveGameRelay(gameID string) {
	m.mu.Lock()
	relay := m.relays[gameID]
	connector := m.connectors[gameID]
	server := m.servers[gameID]
	delete(m.relays, gameID)
	delete(m.connectors, gameID)
	delete(m.servers, gameID)
	delete(m.ports, gameID)
	m.mu.Unlock()

	if relay != nil {
		relay.CloseAll()
	}
	if connector != nil {
		_ = connector.Close()
	}
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = server.Shutdown(ctx)
		cancel()
	}
	m.log.Info().Str("game_id", gameID).Msg("game relay removed")
}

func (m *Manager) spawn(r *Relay) error {
	m.mu.Lock()
	if _, ok := m.relays[r.ID]; ok {
		m.mu.Unlock()
		return errDuplicateRelay
	}
	m.relays[r.ID] = r
	port := 0
	if !m.cfg.SharedPort {
		port = m.nextPort
		m.nextPort++
		m.ports[r.ID] = port
	}
	m.mu.Unlock()

	m.log.Info().Str("relay_id", r.ID).Str("kind", string(r.Kind)).Msg("relay up")
	if m.cfg.SharedPort {
		return nil
	}
	m.listenOwnPort(r, port)
	return nil
}

// listenOwnPort starts a dedicated http.Server for one relay. A bind failure
// is logged and the relay left inert; the process keeps running.
func (m *Manager) listenOwnPort(r *Relay, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		r.HandleWS(&m.upgrader, w, req)
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.mu.Lock()
	m.servers[r.ID] = server
	m.mu.Unlock()
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error().Err(err).Str("relay_id", r.ID).Int("port", port).Msg("relay listener failed, relay inert")
		}
	}()
}

// relayURL is the websocket address a connector dials to reach a relay.
func (m *Manager) relayURL(relayID string) string {
	if m.cfg.SharedPort {
		return fmt.Sprintf("ws://%s%s/ws/%s", m.cfg.PublicHost, portSuffix(m.cfg.HTTPAddr), relayID)
	}
	m.mu.Lock()
	port := m.ports[relayID]
	m.mu.Unlock()
	return fmt.Sprintf("ws://%s:%d/", m.cfg.PublicHost, port)
}

func portSuffix(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ""
}

// Shutdown closes every relay and dedicated listener.
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	relays := make([]*Relay, 0, len(m.relays))
	for _, r := range m.relays {
		relays = append(relays, r)
	}
	servers := make([]*http.Server, 0, len(m.servers))
	for _, s := range m.servers {
		servers = append(servers, s)
	}
	connectors := make([]*Connector, 0, len(m.connectors))
	for _, c := range m.connectors {
		connectors = append(connectors, c)
	}
	m.mu.Unlock()

	for _, c := range connectors {
		_ = c.Close()
	}
	for _, r := range relays {
		r.CloseAll()
	}
	for _, s := range servers {
		_ = s.Shutdown(ctx)
	}
}
