package main

import (
	"fmt"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/tile"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
	cli "gopkg.in/urfave/cli.v1"
)

// fetchAction runs the pipeline once from the command line and prints the
// artifact paths. Exit status is nonzero on any terminal failure.
func fetchAction(c *cli.Context) error {
	pipelineContext := tile.NewContext()

	result, err := tile.FetchTile(pipelineContext, tile.FetchInput{
		LatText:  c.String("lat"),
		LonText:  c.String("lon"),
		Address:  c.String("address"),
		DateText: c.String("date"),
	})
	if err != nil {
		util.LogSimpleErr(pipelineContext, result.Status, err)
		return cli.NewExitError(result.Status, 1)
	}

	fmt.Println(result.Status)
	fmt.Println("tile:", result.TilePath)
	if result.PreviewPath != "" {
		fmt.Println("preview:", result.PreviewPath)
	}
	return nil
}
