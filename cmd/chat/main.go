package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	serverURL := flag.String("server", getEnv("CHAT_SERVER_URL", "http://localhost:3000"), "Parcel assistant server URL")
	timeout := flag.Duration("timeout", 30*time.Second, "Per-message timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := newSession(*serverURL, &http.Client{Timeout: *timeout})

	// An empty first message triggers the welcome node
	if err := turn(ctx, s, ""); err != nil {
		slog.Error("Failed to start conversation", "server", *serverURL, "error", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := turn(ctx, s, text); err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Error("Failed to send message", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Failed to read input", "error", err)
		os.Exit(1)
	}
}

func turn(ctx context.Context, s *session, text string) error {
	lines, err := s.Send(ctx, text)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
