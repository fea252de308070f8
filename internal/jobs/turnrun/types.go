package turnrun

const (
	WorkflowName    = "chat_turn"
	ActivityProcess = "chat_turn_process"
)

type Input struct {
	ConversationID string `json:"conversation_id"`
	TurnID         string `json:"turn_id"`
}

type Result struct {
	AssistantTurnID string `json:"assistant_turn_id,omitempty"`
}
