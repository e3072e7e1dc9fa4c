package session

import "fmt"

// State is the position of the session in the pipeline state machine
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateRecognizing
	StateTranslating
	StateSynthesizing
	StateError
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateExtracting:   "extracting",
	StateRecognizing:  "recognizing",
	StateTranslating:  "translating",
	StateSynthesizing: "synthesizing",
	StateError:        "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// transitions lists the allowed next states for each state
var transitions = map[State][]State{
	StateIdle:         {StateExtracting},
	StateError:        {StateExtracting, StateIdle},
	StateExtracting:   {StateRecognizing, StateError},
	StateRecognizing:  {StateTranslating, StateError},
	StateTranslating:  {StateSynthesizing, StateIdle, StateError},
	StateSynthesizing: {StateIdle, StateError},
}

// CanTransition reports whether the state machine allows s -> to
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Running reports whether a pipeline run owns the session in this state
func (s State) Running() bool {
	return s != StateIdle && s != StateError
}
