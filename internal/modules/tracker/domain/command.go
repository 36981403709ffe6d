package domain

import "strings"

type CommandKind int

const (
	CommandText CommandKind = iota
	CommandPause
	CommandUnpause
	CommandNext
	CommandFinish
	CommandOkay
)

var commandNames = map[CommandKind]string{
	CommandText:    "text",
	CommandPause:   "pause",
	CommandUnpause: "unpause",
	CommandNext:    "next",
	CommandFinish:  "finish",
	CommandOkay:    "okay",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a decoded user instruction. Text carries the raw input for
// CommandText; the controller never compares it.
type Command struct {
	Kind CommandKind
	Text string
}

func (c Command) String() string {
	if c.Kind == CommandText {
		return "text(" + c.Text + ")"
	}
	return c.Kind.String()
}

// ParseCommand decodes one token typed or clicked by the user.
func ParseCommand(token string) Command {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "pause":
		return Command{Kind: CommandPause}
	case "unpause", "resume":
		return Command{Kind: CommandUnpause}
	case "next":
		return Command{Kind: CommandNext}
	case "finish":
		return Command{Kind: CommandFinish}
	case "okay":
		return Command{Kind: CommandOkay}
	}
	return Command{Kind: CommandText, Text: token}
}
