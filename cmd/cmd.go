// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the setlist web application",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser",
			},
			&cli.BoolFlag{
				Name:  "secure-cookies",
				Usage: "Mark the OAuth state cookie Secure (use behind TLS)",
			},
		},
		Action: r.Serve,
	}
}

// initCommand writes a starter configuration file
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write an example config.toml to the current directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to write the configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Init,
	}
}
