package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsgraph/demo/client"
	"newsgraph/demo/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("url", client.GetEnvOrDefault("NEWSGRAPH_URL", "http://localhost:8080"), "newsgraph server URL")
	flag.Parse()

	c := client.NewClient(*serverURL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := c.Health(ctx)
	cancel()
	if err != nil {
		fmt.Printf("Server at %s is not reachable: %v\n", *serverURL, err)
		os.Exit(1)
	}

	program := tea.NewProgram(tui.NewModel(c))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
