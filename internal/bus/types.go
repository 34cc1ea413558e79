package bus

// InboundMessage is a chat message delivered by a channel.
type InboundMessage struct {
	ID         string            // channel-native message id, used for dedupe and replies
	Channel    string            // channel name ("telegram", "discord", "slack", "console")
	SenderID   string            // channel-native sender id
	SenderName string            // display name, for logs only
	ChatID     string            // where replies go
	Content    string            // text with bot mentions removed
	Targeted   bool              // addressed to the bot (DM, mention, reply-to-bot)
	Metadata   map[string]string // channel-specific extras
}

// MetaBotName is the Metadata key holding the bot's own username on
// channels that address commands as "/cmd@botname".
const MetaBotName = "bot_name"

// OutboundMessage is a plain-text reply for a channel to deliver.
type OutboundMessage struct {
	Channel string
	ChatID  string
	ReplyTo string // inbound message id, "" when not a reply
	Content string
}
