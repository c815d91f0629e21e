package services

import "github.com/navaneethdubbaka/Food-Engine/lang"

// Level is the alert style of a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelDanger  Level = "danger"
)

// Notice is a transient user notification. Message, when set, is shown
// verbatim (backend-reported failures); otherwise Key is localized.
type Notice struct {
	Level   Level
	Key     string
	Args    []interface{}
	Message string
}

func (n Notice) IsZero() bool { return n.Key == "" && n.Message == "" }

func (n Notice) Text(locale string) string {
	if n.Message != "" {
		return n.Message
	}
	if n.Key == "" {
		return ""
	}
	return lang.T(locale, n.Key, n.Args...)
}

func notice(level Level, key string, args ...interface{}) Notice {
	return Notice{Level: level, Key: key, Args: args}
}

func verbatim(level Level, msg string) Notice {
	return Notice{Level: level, Message: msg}
}
