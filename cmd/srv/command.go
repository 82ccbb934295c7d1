package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the toml config file",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Path of the .env file",
			Value: ".env",
		},
	}

	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "Betalky"
	s.app.Usage = "Guild authorization and live notification backend"
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Before:      s.prepare,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       flags,
			Category:    "Api",
			Description: `Serves every guild api and the notification stream of this process.`,
		},
		{
			Action:      s.startNotificationProxy,
			Before:      s.prepare,
			Name:        "notification",
			Usage:       "Start service notification proxy",
			Flags:       flags,
			Category:    "Websocket",
			Description: `Holds websocket sessions and delivers the events relayed through redis.`,
		},
		{
			Action:      s.startMigrate,
			Before:      s.prepare,
			Name:        "migrate",
			Usage:       "Migrate the database",
			Flags:       flags,
			Category:    "Database",
			Description: `Creates or updates every table.`,
		},
	}
}
