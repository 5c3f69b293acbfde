package main

import (
	"os"

	dig_container "github.com/labasprak/asprak/apps/api/di/dig"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "graph" {
		// print the dependency graph (DOT) and exit
		must(dig_container.Visualize(dig_container.New()))
		return
	}
	startWithDig()
}
