package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/copernet/zerocoin/conf"
	"github.com/copernet/zerocoin/log"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: zcinspect [--datadir dir] [--conf file] [--regtest|--testnet] <%s> [options]\n",
		strings.Join(commandNames(), "|"))
}

func main() {
	global, cmdArgs := splitCommand(os.Args[1:])
	if len(cmdArgs) == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := conf.InitConfig(global)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.DataDir, 0740); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := log.InitLogger(cfg.DataDir, cfg.Log.Level, cfg.Log.Module); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	in, err := openInspector(cfg)
	if err != nil {
		log.Error("open databases in %s: %v", cfg.DataDir, err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	in.interrupt = interruptListener()
	code := 0
	if err := run(in, os.Stdout, cmdArgs); err != nil {
		log.Error("%s: %v", cmdArgs[0], err)
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	in.Close()
	os.Exit(code)
}
