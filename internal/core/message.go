package core

import "time"

// Senders used for synthetic notices.
const (
	SenderSystem  = "System"
	SenderServer  = "Server"
	SenderAutoMod = "AutoMod"
)

// DefaultName is attached to sessions that declare an empty display name.
const DefaultName = "Anonymous"

// Message is the domain model for a chat entry. Synthetic notices carry no
// identity and have System set.
type Message struct {
	Name     string
	Identity string
	Text     string
	System   bool
	SentAt   time.Time
}

func systemMessage(sender, text string) Message {
	return Message{
		Name:   sender,
		Text:   text,
		System: true,
		SentAt: time.Now(),
	}
}
