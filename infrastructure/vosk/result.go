package vosk

import (
	"encoding/json"
	"strings"
)

// chunkBytes is 0.25s of 16 kHz mono PCM16
const chunkBytes = 8000

type voskResult struct {
	Partial string `json:"partial,omitempty"`
	Text    string `json:"text,omitempty"`
}

// parseText returns the finalized text of a vosk result document
func parseText(resultJSON string) string {
	var result voskResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return ""
	}
	text := strings.TrimSpace(result.Text)
	// vosk emits a lone "the" on noise
	if text == "the" {
		return ""
	}
	return text
}

// chunks splits pcm into feed-sized pieces
func chunks(pcm []byte, size int) [][]byte {
	var out [][]byte
	for len(pcm) > 0 {
		n := min(size, len(pcm))
		out = append(out, pcm[:n])
		pcm = pcm[n:]
	}
	return out
}
