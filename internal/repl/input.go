package repl

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// aliases maps short command forms to their canonical names.
var aliases = map[string]string{
	"/h":    "/help",
	"/t":    "/tab",
	"/i":    "/image",
	"/p":    "/pending",
	"/d":    "/dismiss",
	"/q":    "/quit",
	"/exit": "/quit",
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("/help"),
	readline.PcItem("/tab"),
	readline.PcItem("/image"),
	readline.PcItem("/pending"),
	readline.PcItem("/dismiss"),
	readline.PcItem("/quit"),
)

// readInput returns the next submitted line with surrounding blanks removed.
func (r *REPL) readInput() (string, error) {
	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseCommand splits "/cmd args" and resolves aliases. Lines without a
// leading slash are reminder labels.
func parseCommand(input string) (isCommand bool, command, args string) {
	if !strings.HasPrefix(input, "/") {
		return false, "", ""
	}

	command, args, _ = strings.Cut(input, " ")
	command = strings.ToLower(command)
	if canonical, ok := aliases[command]; ok {
		command = canonical
	}
	return true, command, strings.TrimSpace(args)
}

func setupReadline(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:              prompt,
		AutoComplete:        completer,
		HistoryLimit:        100,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: blockSuspend,
	})
}

// blockSuspend drops Ctrl+Z so the popup cannot be backgrounded mid-prompt.
func blockSuspend(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt)
}
