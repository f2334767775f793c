// Command rosterctl is the admin client of the roster service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/employeehub/internal/client/cli"
	"github.com/dmitrijs2005/employeehub/internal/client/config"
	"github.com/dmitrijs2005/employeehub/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	args := flagx.Positional(os.Args[1:], config.FlagNames)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

}
