package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"binarytrader/cmd/markets"
	"binarytrader/cmd/trader"
	"binarytrader/src/connectors"
	"binarytrader/src/logging"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

// logCloser is set once logging is configured and closed after the command returns.
var logCloser io.Closer

func main() {
	if err := run(newApp(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes app and closes the log output it configured.
func run(app *cli.App, args []string) error {
	err := app.Run(args)
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
	return err
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "binarytrader"
	app.Usage = "Binary options order lifecycle manager"
	app.Version = Version

	app.Before = func(_ *cli.Context) error {
		logCloser = logging.Setup(logging.GetConfig())
		return nil
	}
	app.Commands = []cli.Command{
		traderCMD,
		marketsCMD,
	}

	return app
}

var (
	traderCMD = cli.Command{
		Name:      "trader",
		Usage:     "run a trading session",
		Action:    traderAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "serve", Usage: "also expose the HTTP API"},
		},
		Description: `Run a headless trading session that logs order lifecycle events`,
	}
	marketsCMD = cli.Command{
		Name:        "markets",
		Usage:       "print resolved markets",
		Action:      marketsAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Print the backend markets and the default selection`,
	}
)

func traderAction(c *cli.Context) error {
	logrus.Info("Starting trader CMD")

	session := &trader.Session{
		Log:   logrus.WithField("cmd", "trader"),
		Serve: c.Bool("serve"),
	}
	if err := session.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}
	return nil
}

func marketsAction(_ *cli.Context) error {
	conn := connectors.GetConfig()
	client := connectors.NewClient(conn.APIURL, conn.APIToken, conn.RequestTimeout)
	return markets.Print(context.Background(), client, os.Stdout)
}
