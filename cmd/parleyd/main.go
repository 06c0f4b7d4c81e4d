package main

import (
	"flag"

	"github.com/pcordeiro/parley/internal/daemon"
	"github.com/pcordeiro/parley/internal/workdir"
	"go.uber.org/fx"
)

func main() {
	dataFlag := flag.String("data", "", "data directory (default ~/.parley)")
	addrFlag := flag.String("addr", "", "listen address (overrides config listen_addr)")
	flag.Parse()

	dataDir := *dataFlag
	if dataDir == "" {
		dataDir = workdir.Default()
	}

	app := fx.New(
		daemon.Module(daemon.Params{DataDir: dataDir, Addr: *addrFlag}),
	)

	app.Run()
}
