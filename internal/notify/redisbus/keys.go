package redisbus

import (
	"strings"

	"github.com/mcoot/arkham-companion/internal/model"
)

// channel returns the pub/sub channel for a game session
func (c Config) channel(session model.GameSessionToken) string {
	return c.ChannelPrefix + ":" + string(session)
}

// pattern matches every session channel
func (c Config) pattern() string {
	return c.ChannelPrefix + ":*"
}

// sessionFromChannel recovers the session token from a channel name
func (c Config) sessionFromChannel(channel string) (model.GameSessionToken, bool) {
	token, ok := strings.CutPrefix(channel, c.ChannelPrefix+":")
	return model.GameSessionToken(token), ok && token != ""
}
