package redis

import (
	"fmt"

	"github.com/brentkao/roomcoord/internal/model"
)

// Key prefix for all coordinator data
const keyPrefix = "roomcoord"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// accountKey returns the Redis key for an Account
func accountKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// ticketKey returns the Redis key for an exchange ticket
func ticketKey(token string) string {
	return fmt.Sprintf("%s:ticket:%s", keyPrefix, token)
}
