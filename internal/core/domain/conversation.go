package domain

// Conversation roles.
const (
	// RoleSystem marks the system prompt message.
	RoleSystem = "system"

	// RoleUser marks a message authored by the caller.
	RoleUser = "user"

	// RoleAssistant marks a message authored by the model.
	RoleAssistant = "assistant"
)

// Turn is a single message in a session's conversation history.
type Turn struct {
	// Role is one of RoleSystem, RoleUser or RoleAssistant.
	Role string

	// Content is the message text.
	Content string
}

// Stage identifies a step of the chat pipeline. Each stage is announced
// to the caller before its work begins.
type Stage string

// Pipeline stages in execution order.
const (
	StageInit     Stage = "init"
	StageRewrite  Stage = "rewrite"
	StageRetrieve Stage = "retrieve"
	StageAssemble Stage = "assemble"
	StageGenerate Stage = "generate"
	StageDone     Stage = "done"
	StageError    Stage = "error"
)
