// Package lobby tracks who is around and which games exist, and turns routed
// lobby messages into state changes and broadcasts.
package lobby

import (
	"sync"

	"cardhub/internal/game"
	"cardhub/internal/protocol"
)

// Member is one logged-in player. Login order is preserved so the lobby view
// renders members stably.
type Member struct {
	PlayerID   string
	PlayerName string
}

// Lobby is one named room of members and the games created from it.
type Lobby struct {
	mu sync.Mutex

	ID      string
	members []Member
	games   map[string]*game.Game
}

func NewLobby(id string) *Lobby {
	return &Lobby{ID: id, games: map[string]*game.Game{}}
}

// AddMember records a login. Repeat logins refresh the name in place; a
// player never appears twice.
func (l *Lobby) AddMember(playerID, playerName string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.members {
		if m.PlayerID == playerID {
			l.members[i].PlayerName = playerName
			return
		}
	}
	l.members = append(l.members, Member{PlayerID: playerID, PlayerName: playerName})
}

func (l *Lobby) RemoveMember(playerID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, m := range l.members {
		if m.PlayerID == playerID {
			l.members = append(l.members[:i], l.members[i+1:]...)
			return
		}
	}
}

func (l *Lobby) HasMember(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		if m.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (l *Lobby) AddGame(g *game.Game) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.games[g.ID] = g
}

func (l *Lobby) RemoveGame(gameID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.games, gameID)
}

func (l *Lobby) Game(gameID string) (*game.Game, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.games[gameID]
	return g, ok
}

// View snapshots the lobby for broadcast.
func (l *Lobby) View() protocol.LobbyView {
	l.mu.Lock()
	defer l.mu.Unlock()
	v := protocol.LobbyView{LobbyID: l.ID, Members: make([]protocol.MemberView, 0, len(l.members))}
	for _, m := range l.members {
		v.Members = append(v.Members, protocol.MemberView{PlayerID: m.PlayerID, PlayerName: m.PlayerName, InLobby: true})
	}
	for _, g := range l.games {
		v.Games = append(v.Games, g.View())
	}
	return v
}
