package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	maxRenders := flag.Int("max-renders", 2, "Maximum concurrent renders")
	consoleSize := flag.Int("console-size", 200, "Log messages kept for /api/console")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level %q\n", *logLevel)
		os.Exit(2)
	}

	console := server.NewConsole(*consoleSize)
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(server.NewConsoleHandler(handler, console))
	core.SetLogger(logger)

	// Create and start web server
	webServer := server.NewServer(*port, console, *maxRenders)

	logger.Info("Weekend Raytracer Web Server")
	logger.Info(fmt.Sprintf("Visit http://localhost:%d/api/scenes to list scenes", *port))

	if err := webServer.Start(); err != nil {
		logger.Error("error starting server", slog.Any("error", err))
		os.Exit(1)
	}
}
