// Package main provides the sdsprotocol command line: protocol inspection, step management
// and the HTTP API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

const defaultPort = 9092

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  "sdsprotocol",
		Usage:                 "Assign workflow artifacts to SDS protocol inputs",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Root directory of the step configuration store",
				Value:   "./data",
				Sources: cli.EnvVars("SDS_STORE_PATH"),
			},
			&cli.StringFlag{
				Name:     "plugins-path",
				Usage:    "Path to the directory containing node plugins",
				Value:    "",
				Required: false,
				Sources:  cli.EnvVars("SDS_PLUGINS_PATH"),
			},
		},
		Commands: []*cli.Command{
			ListCommand(),
			DescribeCommand(),
			MatchCommand(),
			StepCommand(),
			ServeCommand(),
		},
	}
}

func main() {
	cmd := newRootCommand()

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
