// Copyright 2024, BloomWatch Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	cli "gopkg.in/urfave/cli.v1"
)

const version = "1.0.0"

var commands = cli.Commands{
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the bloomwatch-broker webserver",
		Action:  serveAction,
	},
	cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Fetch a single HLS tile and exit",
		Action:  fetchAction,
		Flags: []cli.Flag{
			cli.StringFlag{Name: "lat", Usage: "latitude in decimal degrees"},
			cli.StringFlag{Name: "lon", Usage: "longitude in decimal degrees"},
			cli.StringFlag{Name: "address", Usage: "address to geocode when lat/lon are absent"},
			cli.StringFlag{Name: "date", Usage: "target date, YYYY-MM-DD (defaults to today)"},
		},
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the Broker CLI",
		Action:  versionAction,
	},
}

func versionAction(*cli.Context) {
	fmt.Println(version)
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "bloomwatch-broker"
	app.Usage = "Launch a bloomwatch-broker process"
	app.Commands = commands
	return
}
