package lobby

import "errors"

var (
	errActionNotListed = errors.New("action_not_allowed")
	errMissingPlayer   = errors.New("missing_player_id")
	errMissingTarget   = errors.New("missing_target_id")
	errUnknownLobby    = errors.New("unknown_lobby")
	errUnknownGame     = errors.New("unknown_game")
	errLobbyExists     = errors.New("lobby_exists")
	errMaxLobbies      = errors.New("max_lobbies_reached")
	errNotLoggedIn     = errors.New("not_logged_in")
)
