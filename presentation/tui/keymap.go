package tui

// Key binding constants used in handleKey.
const (
	KeyQuit         = "q"
	KeyCtrlC        = "ctrl+c"
	KeyUp           = "up"
	KeyDown         = "down"
	KeyJ            = "j"
	KeyK            = "k"
	KeyEnter        = "enter"
	KeyStop         = "s"
	KeyToggleAudio  = "a"
	KeySpace        = " "
	KeyVolumeUp     = "+"
	KeyVolumeUpAlt  = "="
	KeyVolumeDown   = "-"
	KeyOriginalUp   = "]"
	KeyOriginalDown = "["
	KeyReload       = "r"
)

// VolumeStep is the change applied by one volume key press
const VolumeStep = 0.1
