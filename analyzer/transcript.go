package analyzer

import (
	"strings"
)

const (
	RoleAgent    = "Agente"
	RoleCustomer = "Cliente"
)

// Turn is one line of a diarized transcript.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TurnStats summarizes who spoke and how much in a transcript
type TurnStats struct {
	AgentTurns    int `json:"agent_turns"`
	CustomerTurns int `json:"customer_turns"`
	OtherTurns    int `json:"other_turns"`
	AgentWords    int `json:"agent_words"`
	CustomerWords int `json:"customer_words"`
}

// ParseTurns splits a "Role: text" transcript into turns. Blank lines are skipped and
// a line without a colon becomes a turn with no speaker.
func ParseTurns(transcription string) []Turn {
	var turns []Turn
	for _, line := range strings.Split(transcription, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		speaker, text, found := strings.Cut(line, ":")
		if !found {
			turns = append(turns, Turn{Text: line})
			continue
		}
		turns = append(turns, Turn{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(text),
		})
	}
	return turns
}

// ComputeTurnStats counts turns and words per role. Roles are matched loosely, the
// same way the dashboard colors them.
func ComputeTurnStats(transcription string) TurnStats {
	var stats TurnStats
	for _, turn := range ParseTurns(transcription) {
		words := len(strings.Fields(turn.Text))
		switch speaker := strings.ToLower(turn.Speaker); {
		case strings.Contains(speaker, strings.ToLower(RoleAgent)):
			stats.AgentTurns++
			stats.AgentWords += words
		case strings.Contains(speaker, strings.ToLower(RoleCustomer)):
			stats.CustomerTurns++
			stats.CustomerWords += words
		default:
			stats.OtherTurns++
		}
	}
	return stats
}
