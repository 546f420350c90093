package protocol

import (
	"encoding/json"

	"freeze_dryer/internal/models"
)

// Outbound command names.
const (
	CommandStart  = "start"
	CommandPause  = "pause"
	CommandResume = "resume"
	CommandStop   = "stop"
)

// Command is an outbound control message.
type Command struct {
	Command string         `json:"command"`
	Recipe  *models.Recipe `json:"recipe,omitempty"`
}

func StartCommand(r models.Recipe) Command {
	rc := r.Clone()
	return Command{Command: CommandStart, Recipe: &rc}
}

func PauseCommand() Command  { return Command{Command: CommandPause} }
func ResumeCommand() Command { return Command{Command: CommandResume} }
func StopCommand() Command   { return Command{Command: CommandStop} }

// EncodeCommand renders cmd as one JSON line terminated by a single "\n".
func EncodeCommand(cmd Command) (string, error) {
	b, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
