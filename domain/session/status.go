package session

// Status is a consistent snapshot of the session for observers
type Status struct {
	State           State
	RunID           string
	SourceFile      string
	Translating     bool
	Listening       bool
	Speaking        bool
	LastTranscript  string
	LastTranslation string
	Error           string
	Settings        PlaybackSettings
	History         []HistoryEntry
}
