package log

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/astaxie/beego/logs"
)

const errUnknownLevel = "unknown log level"

var mapModule = make(map[string]struct{})

type logConfig struct {
	Filename string `json:"filename"`
	Level    int    `json:"level,omitempty"`
	Rotate   bool   `json:"rotate,omitempty"`
	Daily    bool   `json:"daily,omitempty"`
	MaxDays  int64  `json:"maxdays,omitempty"`
}

// Init installs a beego file adapter with a raw json configuration.
func Init(configuration string) {
	logs.EnableFuncCallDepth(true)
	logs.SetLogFuncCallDepth(3)
	logs.SetLogger(logs.AdapterFile, configuration)
}

// InitLogger writes logs to dir/zerocoin.log and enables Print for modules.
func InitLogger(dir, level string, modules []string) error {
	config, err := json.Marshal(logConfig{
		Filename: filepath.Join(dir, "zerocoin.log"),
		Level:    GetLevel(level),
		Rotate:   true,
		Daily:    true,
		MaxDays:  7,
	})
	if err != nil {
		return err
	}
	Init(string(config))
	SetModules(modules)
	return nil
}

func SetModules(modules []string) {
	mapModule = make(map[string]struct{}, len(modules))
	for _, m := range modules {
		mapModule[strings.ToLower(m)] = struct{}{}
	}
}

func IsIncludeModule(module string) bool {
	_, ok := mapModule[strings.ToLower(module)]
	return ok
}

// Print logs under module only if the module was enabled at init.
func Print(module string, level string, format string, reason ...interface{}) {
	if !IsIncludeModule(module) {
		return
	}
	l, ok := levelMap[strings.ToLower(level)]
	if !ok {
		logs.Error("%s: %s", errUnknownLevel, level)
		return
	}
	writeAt(l, fmt.Sprintf("[%s] %s", module, format), reason...)
}

func Emergency(f interface{}, v ...interface{}) {
	logs.Emergency(f, v...)
}

func Alert(f interface{}, v ...interface{}) {
	logs.Alert(f, v...)
}

func Critical(f interface{}, v ...interface{}) {
	logs.Critical(f, v...)
}

func Error(f interface{}, v ...interface{}) {
	logs.Error(f, v...)
}

func Warn(f interface{}, v ...interface{}) {
	logs.Warn(f, v...)
}

func Notice(f interface{}, v ...interface{}) {
	logs.Notice(f, v...)
}

func Info(f interface{}, v ...interface{}) {
	logs.Info(f, v...)
}

func Debug(f interface{}, v ...interface{}) {
	logs.Debug(f, v...)
}
