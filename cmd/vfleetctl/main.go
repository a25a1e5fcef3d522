package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/autopeer-io/vfleet/cmd/vfleetctl/app"
)

func main() {
	app.NewApp().Run()
}
