package tui

import domsession "video-translator/domain/session"

// FilesLoadedMsg carries the video files found in the source directory.
type FilesLoadedMsg struct {
	Files []string
}

// FilesErrorMsg is sent when the source directory cannot be listed.
type FilesErrorMsg struct {
	Err error
}

// StatusMsg carries a session status change.
type StatusMsg struct {
	Status domsession.Status
}

// statusClosedMsg is sent when the status subscription ends.
type statusClosedMsg struct{}

// RunFinishedMsg is sent when a pipeline run returns.
type RunFinishedMsg struct {
	Path  string
	Entry *domsession.HistoryEntry
	Err   error
}

// ClearNoticeMsg clears a transient notice after a timeout.
type ClearNoticeMsg struct{}
