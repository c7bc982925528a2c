package domain

// Role tags a message in the agent conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the prompt handed to the agent.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TruncationMarker is shown when older turns fall outside the window.
const TruncationMarker = "[History truncated - earlier turns omitted]"

// Window is the bounded view of an episode given to the agent for its next turn.
type Window struct {
	Header    Message      `json:"header"`
	Truncated bool         `json:"truncated"`
	Turns     []TurnRecord `json:"turns"`
	Current   Message      `json:"current"`
}

// Messages flattens the window into an ordered conversation.
func (w Window) Messages() []Message {
	msgs := make([]Message, 0, 2*len(w.Turns)+3)
	msgs = append(msgs, w.Header)
	if w.Truncated {
		msgs = append(msgs, Message{Role: RoleUser, Content: TruncationMarker})
	}
	for _, t := range w.Turns {
		submitted := t.Response
		switch {
		case submitted != "":
		case t.Result == TurnTimeout || t.Result == TurnAgentFail:
			submitted = "(no response)"
		default:
			submitted = t.Batch.String()
		}
		msgs = append(msgs,
			Message{Role: RoleAssistant, Content: submitted},
			Message{Role: RoleUser, Content: t.Feedback},
		)
	}
	msgs = append(msgs, w.Current)
	return msgs
}
