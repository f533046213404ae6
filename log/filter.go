package log

import (
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

// activeRules holds the zapfilter rules applied to every logger created
// after EnableFilterRules/EnableFilterFile was called.
var activeRules zapfilter.FilterFunc

// EnableFilterRules installs zapfilter rules, e.g.
// "debug:watcher.* info:* -*:notify.fcm".
// Must be called before the default logger is (re)created.
func EnableFilterRules(rules string) error {
	if strings.TrimSpace(rules) == "" {
		activeRules = nil
		return nil
	}
	parsed, err := zapfilter.ParseRules(rules)
	if err != nil {
		return err
	}
	activeRules = parsed
	return nil
}

// EnableFilterFile reads filter rules from a file (single line or
// whitespace-separated rules).
func EnableFilterFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return EnableFilterRules(strings.TrimSpace(string(data)))
}

func wrapFilterCore(core zapcore.Core) zapcore.Core {
	if activeRules == nil {
		return core
	}
	return zapfilter.NewFilteringCore(core, activeRules)
}
