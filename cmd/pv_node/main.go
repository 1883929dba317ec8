package main

import (
	"pvnode/cfg"
	"pvnode/node"
	"pvnode/util"
	"pvnode/util/log"
	"pvnode/version"

	"flag"
	"fmt"
	"os"
)

func main() {
	logger := log.New(os.Stderr)

	cfgfile := flag.String("config", "config.toml", "configurations")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	config, err := cfg.LoadConfig(*cfgfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
		os.Exit(1)
	}

	node, err := node.NewNode(config, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %#v\n", err)
		os.Exit(1)
	}
	node.Start()
	util.TrapSignalTerm(func(sig os.Signal) {
		fmt.Printf("captured %v, exiting...\n", sig)
		node.Stop()
	})
	node.WaitForStop()
}
