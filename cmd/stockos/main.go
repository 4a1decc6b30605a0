// Command stockos imports broker holdings exports, keeps their prices in
// sync with the quote feed and reports portfolio profit and loss.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/google/subcommands"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&serveCmd{}, "service")
	subcommands.Register(&importCmd{}, "portfolio")
	subcommands.Register(&syncCmd{}, "portfolio")
	subcommands.Register(&summaryCmd{}, "portfolio")
	subcommands.Register(&editCmd{}, "portfolio")
	subcommands.Register(&rmCmd{}, "portfolio")
	subcommands.Register(&cashCmd{}, "portfolio")
	subcommands.Register(&watchCmd{}, "portfolio")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
