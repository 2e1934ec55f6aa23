package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/scrapmap/scrapmap/cmd"
)

var log = logging.Logger("scrapmap")

func main() {
	app := &cli.App{
		Name:  "scrapmap",
		Usage: "Manage running the scrapmap API.",
		Commands: []*cli.Command{
			cmd.ServeCmd,
			cmd.VersionCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
