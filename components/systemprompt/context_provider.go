package systemprompt

// ContextProvider supplies one titled section of dynamic prompt context,
// such as the conversation snapshot or the verified tool results gathered
// for the current turn.
type ContextProvider interface {
	Title() string
	Info() string
}
