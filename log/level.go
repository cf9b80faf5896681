package log

import (
	"strings"

	"github.com/astaxie/beego/logs"
)

const defaultLogLevel = logs.LevelDebug

var levelMap = map[string]int{
	"emergency":     logs.LevelEmergency,
	"alert":         logs.LevelAlert,
	"critical":      logs.LevelCritical,
	"error":         logs.LevelError,
	"warn":          logs.LevelWarning,
	"warning":       logs.LevelWarning,
	"notice":        logs.LevelNotice,
	"info":          logs.LevelInformational,
	"informational": logs.LevelInformational,
	"debug":         logs.LevelDebug,
}

// GetLevel maps a configured level name to a beego level, falling back
// to debug for unknown names.
func GetLevel(level string) int {
	if l, ok := levelMap[strings.ToLower(level)]; ok {
		return l
	}
	return defaultLogLevel
}

// writers dispatches on beego levels, indexed by level number.
var writers = [...]func(f interface{}, v ...interface{}){
	logs.LevelEmergency:     logs.Emergency,
	logs.LevelAlert:         logs.Alert,
	logs.LevelCritical:      logs.Critical,
	logs.LevelError:         logs.Error,
	logs.LevelWarning:       logs.Warn,
	logs.LevelNotice:        logs.Notice,
	logs.LevelInformational: logs.Info,
	logs.LevelDebug:         logs.Debug,
}

func writeAt(level int, f interface{}, v ...interface{}) {
	writers[level](f, v...)
}
