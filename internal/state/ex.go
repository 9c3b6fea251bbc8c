package state

import "strings"

// ExecuteEx runs one ex command line (without the leading colon) and
// returns the mode to continue in.
func ExecuteEx(a *Access, cmd string) Mode {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return ModeNormal
	}
	name := cmd
	rest := ""
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		name = cmd[:i]
		rest = strings.TrimSpace(cmd[i+1:])
	}

	switch name {
	case "q", "q!", "quit":
		return ModeQuit
	case "w", "write":
		saveFocused(a)
		return ModeNormal
	case "wq", "x":
		if saveFocused(a) {
			return ModeQuit
		}
		return ModeNormal
	case "e", "edit":
		if rest == "" {
			a.Contents.Push("Argument required")
			return ModeNormal
		}
		if a.OpenFile != nil {
			if err := a.OpenFile(rest); err != nil {
				pushError(a, err)
			}
		}
		return ModeNormal
	case "echo":
		a.Contents.Push(rest)
		return ModeNormal
	case "js":
		if a.EvalJs != nil {
			a.EvalJs(rest)
		}
		return ModeNormal
	default:
		if a.RunUserCommand != nil && a.RunUserCommand(name, rest) {
			return ModeNormal
		}
		a.Contents.Push("Not an editor command: " + name)
		return ModeNormal
	}
}

func saveFocused(a *Access) bool {
	if a.SaveBuffer == nil {
		return true
	}
	if err := a.SaveBuffer(); err != nil {
		pushError(a, err)
		return false
	}
	return true
}
