package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/vfleet/cmd/vfleet-sim/app"
)

func main() {
	app.NewApp().Run()
}
