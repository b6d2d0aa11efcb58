package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"i4.energy/across/radiocfg/at"
	"i4.energy/across/radiocfg/radio"
)

// runConsole starts an interactive AT console on the given transport.
// One session serves the raw enter/send commands; the baud command runs
// the full procedure on a fresh session per attempt.
func runConsole(transport radio.Transport, logger *slog.Logger) {
	session := radio.NewSession(transport, radio.Config{
		Logger: logger.With("component", "session"),
	})

	shell := ishell.New()
	shell.Println("radio modem AT console")
	shell.SetPrompt(fmt.Sprintf("[%d] > ", transport.BaudRate()))

	shell.AddCmd(&ishell.Cmd{
		Name: "enter",
		Help: "force the modem into command mode via a break signal",
		Func: func(c *ishell.Context) {
			c.Println("holding break...")
			if err := session.EnterCommandMode(context.Background()); err != nil {
				c.Err(err)
				return
			}
			c.Println("command mode forced")
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "send",
		Help: "COMMAND  send a raw AT command and print the response",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("COMMAND required"))
				return
			}
			resp, err := session.Dispatch(context.Background(), strings.Join(c.Args, " "))
			if err != nil {
				c.Err(err)
				return
			}
			if resp.Status == radio.StatusTimedOut {
				c.Println("(timed out)")
			}
			c.Println(resp.Text)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "baud",
		Help: "RATE  run the full baud reconfiguration procedure",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("RATE required"))
				return
			}
			rate, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("invalid RATE: %v", err))
				return
			}
			attempt := radio.NewSession(transport, radio.Config{
				Logger: logger.With("component", "session"),
			})
			if err := attempt.Reconfigure(context.Background(), rate); err != nil {
				c.Err(err)
				return
			}
			shell.SetPrompt(fmt.Sprintf("[%d] > ", transport.BaudRate()))
			c.Printf("reconfigured to %d\n", rate)
		},
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "rates",
		Help: "list baud rates the modem supports",
		Func: func(c *ishell.Context) {
			for _, r := range at.SupportedRates() {
				c.Println(r)
			}
		},
	})

	shell.Run()
}
