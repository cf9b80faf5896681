package conf

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

type Opts struct {
	DataDir  string `long:"datadir" description:"specified program data dir"`
	ConfFile string `long:"conf" description:"path to the yaml configuration file"`
	Reindex  bool   `long:"reindex" description:"wipe zerocoin records and rebuild them from blocks"`
	RegTest  bool   `long:"regtest" description:"use the small regression test parameters"`
	TestNet  bool   `long:"testnet" description:"use the test network parameters"`
}

func InitArgs(args []string) (*Opts, error) {
	opts := new(Opts)
	_, err := flags.ParseArgs(opts, args)
	if err != nil {
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	return opts, nil
}

func (opts *Opts) String() string {
	return fmt.Sprintf("datadir:%s regtest:%v testnet:%v reindex:%v", opts.DataDir, opts.RegTest, opts.TestNet, opts.Reindex)
}
