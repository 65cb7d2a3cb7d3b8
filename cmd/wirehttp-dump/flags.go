package main

import (
	"flag"
	"os"
)

// version is injected at build time with -ldflags "-X main.version=...".
var version = "dev"

type cliConfig struct {
	inputPath   string
	response    bool
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("wirehttp-dump", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	fs.StringVar(&cfg.inputPath, "file", "", "path to a file containing the message (default: stdin)")
	fs.BoolVar(&cfg.response, "response", false, "parse the input as a response instead of a request")
	fs.BoolVar(&cfg.showVersion, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
