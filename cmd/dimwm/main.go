// Command dimwm is the manager's entrypoint: with no arguments it becomes
// the window manager for the current X display; with one of
// --tagset/--exit/--restart/--exec it acts as a thin remote-control client
// that signals an already-running instance and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dimwm/dimwm/internal/cfg"
	"github.com/dimwm/dimwm/internal/log"
	"github.com/dimwm/dimwm/internal/wm"
	"github.com/dimwm/dimwm/internal/x11"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := os.Args[1:]
	if len(args) > 0 {
		return runRemote(args)
	}
	return runManager()
}

// runRemote implements the CLI verbs that talk to an already-running
// manager instead of starting one.
func runRemote(args []string) int {
	conn, err := x11.NewConn()
	if err != nil {
		fmt.Println("Failed to connect to X server:", err)
		return 1
	}
	defer conn.Close()

	switch args[0] {
	case "--tagset":
		if len(args) < 2 {
			fmt.Println("--tagset requires a tagset expression argument")
			return 1
		}
		if err := wm.SendTagsetUpdate(conn, args[1]); err != nil {
			fmt.Println("Failed to send tagset update:", err)
			return 1
		}
	case "--exit":
		if err := wm.SendExit(conn); err != nil {
			fmt.Println("Failed to send exit signal:", err)
			return 1
		}
	case "--restart":
		if err := wm.SendRestart(conn); err != nil {
			fmt.Println("Failed to send restart signal:", err)
			return 1
		}
	case "--exec":
		if len(args) < 2 {
			fmt.Println("--exec requires a command argument")
			return 1
		}
		if err := wm.SendExec(conn, strings.Fields(strings.Join(args[1:], " "))); err != nil {
			fmt.Println("Failed to send exec signal:", err)
			return 1
		}
	default:
		printHelp()
		return 1
	}
	return 0
}

// runManager becomes the window manager: claim the display, adopt
// existing clients, then drive the event loop until a signal or a
// --exit/--restart client message asks it to stop.
func runManager() int {
	logPath, ok := os.LookupEnv("DIMWM_LOG_PATH")
	if !ok {
		logPath = "/tmp/dimwm.log"
	}
	logger := log.DefaultLogger("dimwm", log.INFO, logPath)
	defer logger.Close()

	c, err := cfg.Load("")
	if err != nil {
		logger.Error("failed to load config: %s", err)
		return 1
	}

	conn, err := x11.NewConn()
	if err != nil {
		logger.Error("failed to connect to X server: %s", err)
		return 1
	}

	mgr, err := wm.New(conn, c, os.Args, logger)
	if err != nil {
		logger.Error("failed to construct manager: %s", err)
		conn.Close()
		return 1
	}
	if err := mgr.Startup(); err != nil {
		if err == x11.ErrAnotherWM {
			logger.Error("another window manager is already running")
		} else {
			logger.Error("startup failed: %s", err)
		}
		conn.Close()
		return 1
	}
	logger.Info("dimwm started")

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		logger.Info("received shutdown signal")
		cancel()
	}()

	runErr := mgr.Run(ctx)
	if runErr != nil && runErr != context.Canceled {
		logger.Error("event loop exited: %s", runErr)
	}
	if err := mgr.Shutdown(nil, conn.CurrentTime()); err != nil {
		logger.Error("shutdown failed: %s", err)
		return 1
	}
	return 0
}

func printHelp() {
	fmt.Println("usage: dimwm [--tagset EXPR | --exit | --restart | --exec CMD...]")
	fmt.Println("  with no arguments, dimwm becomes the window manager")
}
