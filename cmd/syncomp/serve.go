package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/revelaction/syncomp/server"
)

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "addr", Usage: "listen `ADDRESS`"},
	}
}

func serveCommand(c *cli.Context, ui UI) error {
	e, err := setup(c, ui)
	if err != nil {
		return err
	}
	defer e.Close()

	addr := e.cfg.Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := server.NewHandler(e.store, e.log)
	return server.ListenAndServe(ctx, addr, server.NewRouter(h, e.cfg.Server.AllowedOrigins), e.log)
}
