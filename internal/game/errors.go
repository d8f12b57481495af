package game

import "errors"

var (
	errGameEnded        = errors.New("game_ended")
	errNotInvited       = errors.New("not_invited")
	errAlreadyJoined    = errors.New("already_joined")
	errGameFull         = errors.New("game_full")
	errNotInGame        = errors.New("not_in_game")
	errAlreadyStarted   = errors.New("already_started")
	errNotEnoughPlayers = errors.New("not_enough_players")
	errNotStarted       = errors.New("game_not_started")

	errUnknownGame     = errors.New("unknown_game")
	errUnknownGameType = errors.New("unknown_game_type")
	errActionNotListed = errors.New("action_not_allowed")
	errMissingAction   = errors.New("missing_game_action")
	errMissingPlayer   = errors.New("missing_player_id")
)
