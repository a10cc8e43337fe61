package support

// EventType classifies what a listener is being told about.
type EventType string

const (
	// EventMessage: a message was appended to a conversation.
	EventMessage EventType = "message"
	// EventNewRequest: an end user wrote outside the currently selected
	// conversation; carries a display label for the notification toast.
	EventNewRequest EventType = "new_request"
	// EventConversationDeleted: a whole conversation was removed.
	EventConversationDeleted EventType = "conversation_deleted"
)

type Event struct {
	Type        EventType `json:"type"`
	Message     Message   `json:"message,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	AuthorLabel string    `json:"author_label,omitempty"`
}

// Listener receives normalized conversation events. Display components
// subscribe here instead of opening their own stream subscriptions, so each
// role holds exactly one upstream subscription regardless of how many views
// are attached.
type Listener interface {
	OnSupportEvent(ev Event)
}

// ListenerFunc adapts a plain function to the Listener interface.
type ListenerFunc func(ev Event)

func (f ListenerFunc) OnSupportEvent(ev Event) { f(ev) }

// Publisher pushes a freshly inserted message onto the notification stream.
type Publisher interface {
	PublishMessageCreated(m Message) error
}
