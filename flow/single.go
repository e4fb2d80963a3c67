package flow

// SingleAgentFlow is the flow of a standalone tool-using agent: instructions
// and history processors, then the model / tool loop of BaseFlow.
type SingleAgentFlow struct{ *BaseFlow }

// NewSingleAgentFlow creates a SingleAgentFlow with the default processors.
func NewSingleAgentFlow(agent FlowAgent, optFns ...func(o *BaseFlowOptions)) *SingleAgentFlow {
	baseFlow := NewBaseFlow(agent, optFns...)

	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())

	return &SingleAgentFlow{BaseFlow: baseFlow}
}
