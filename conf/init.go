package conf

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	tagName   = "default"
	envPrefix = "zerocoin"
	confName  = "conf.yml"
)

var Cfg *Configuration

type Configuration struct {
	DataDir string `default:""`
	Reindex bool   `default:"false"`
	Log     struct {
		Level  string   `default:"info"`
		Module []string `default:"accumulator,witness,zerocoin,mempool"`
	}
	Persist struct {
		CacheSizeMB  int  `default:"8"`
		NoObfuscate  bool `default:"false"`
		WitnessCache bool `default:"true"`
	}
	Zerocoin struct {
		ParamSet              string `default:"main"`
		StartHeight           int32  `default:"0"`
		SecurityLevel         int    `default:"100"`
		RequiredAccumulation  int    `default:"1"`
		CheckpointCacheSize   int    `default:"1024"`
		BatchVerifyThreshold  int    `default:"8"`
		BatchVerifyMaxThreads int    `default:"8"`
		ZKPIterations         int    `default:"80"`
	}
}

// setDefaults registers every struct tag default under its dotted viper key.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		key := strings.ToLower(field.Name)
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get(tagName))
	}
}

func sampleConfPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	return filepath.Join(filepath.Dir(filename), confName)
}

// InitConfig parses command line args, then layers the yaml file found in
// the data dir (or the bundled sample) and ZEROCOIN_* env vars over defaults.
func InitConfig(args []string) (*Configuration, error) {
	opts, err := InitArgs(args)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	setDefaults(v, reflect.TypeOf(Configuration{}), "")

	confFile := opts.ConfFile
	if confFile == "" && opts.DataDir != "" {
		confFile = filepath.Join(opts.DataDir, confName)
	}
	if _, err := os.Stat(confFile); confFile == "" || err != nil {
		confFile = sampleConfPath()
	}
	if file, err := os.Open(confFile); err == nil {
		defer file.Close()
		if err := v.ReadConfig(file); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", confFile)
		}
	}

	config := &Configuration{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if opts.DataDir != "" {
		config.DataDir = opts.DataDir
	}
	if config.DataDir == "" {
		config.DataDir = defaultDataDir()
	}
	if opts.Reindex {
		config.Reindex = true
	}
	if opts.RegTest {
		config.Zerocoin.ParamSet = "regtest"
	}
	if opts.TestNet {
		config.Zerocoin.ParamSet = "test"
	}

	Cfg = config
	return config, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".zerocoin"
	}
	return filepath.Join(home, ".zerocoin")
}
