package main

import (
	"github.com/lacarte/orderdesk/internal/app"
	"github.com/lacarte/orderdesk/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
