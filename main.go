// ABOUTME: Entry point for the soundstage daemon
// ABOUTME: Wires config, spatial player, audio output, control server and TUI
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/soundstage/internal/config"
	"github.com/Sendspin/soundstage/internal/server"
	"github.com/Sendspin/soundstage/internal/ui"
	"github.com/Sendspin/soundstage/internal/version"
	"github.com/Sendspin/soundstage/pkg/audio/output"
	"github.com/Sendspin/soundstage/pkg/soundstage"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	configFile = flag.String("config", "", "Config file (default: ./soundstage.yaml if present)")
	envFile    = flag.String("env-file", ".env", "Environment file preloaded before config")
	port       = flag.Int("port", 8928, "Control server port")
	name       = flag.String("name", "", "Server friendly name (default: hostname-soundstage)")
	assetRoot  = flag.String("assets", ".", "Base URL or directory for relative asset paths")
	outputName = flag.String("output", config.OutputOto, "Audio output: oto or null")
	bufferMs   = flag.Int("buffer-ms", 40, "Output device buffer in milliseconds")
	volume     = flag.Float64("volume", 1.0, "Initial master volume (0-1)")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	logFile    = flag.String("log-file", "soundstage.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs = flag.Bool("stream-logs", false, "Alias for -no-tui")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(config.Options{ConfigFile: *configFile, EnvFile: *envFile})
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !cfg.NoTUI

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	serverName := cfg.Name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-soundstage", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, serverName)
	if !useTUI {
		log.Printf("TUI disabled - logging to stdout and %s", cfg.LogFile)
	}

	// TUI setup
	var tuiProg *tea.Program
	var controls *ui.Controls

	if useTUI {
		controls = ui.NewControls()
		tuiProg, err = ui.Run(controls)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	srv := server.New(server.Config{
		Port:       cfg.Port,
		Name:       serverName,
		EnableMDNS: cfg.MDNS,
		Debug:      cfg.Debug,
	})

	player, err := soundstage.NewPlayer(soundstage.Config{
		SampleRate:     cfg.SampleRate,
		AssetRoot:      cfg.AssetRoot,
		Output:         newOutput(cfg),
		OnLoadStart:    srv.LoadStarted,
		OnLoadComplete: srv.LoadCompleted,
		OnLoadError: func(err error) {
			srv.LoadFailed(err)
			updateTUI(ui.StatusMsg{LastError: err.Error()})
		},
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}
	if err := player.SetVolume(cfg.Volume, soundstage.MinRampTime); err != nil {
		log.Printf("Failed to set initial volume: %v", err)
	}
	srv.Attach(player)

	updateTUI(ui.StatusMsg{
		ServerName: serverName,
		ListenAddr: fmt.Sprintf(":%d", cfg.Port),
	})

	if len(cfg.Preload) > 0 {
		go preload(player, cfg.Preload)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	if controls != nil {
		go handleControls(player, controls)
	}
	if tuiProg != nil {
		go statusUpdateLoop(player, srv, updateTUI)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var quit chan struct{}
	if controls != nil {
		quit = controls.Quit
	}

	select {
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Printf("Control server failed: %v", err)
		}
	}

	srv.Stop()

	if err := player.Close(); err != nil {
		log.Printf("Error closing player: %v", err)
	}
	if tuiProg != nil {
		tuiProg.Quit()
	}

	log.Printf("Soundstage stopped")
}

// applyFlags lets explicitly set flags win over file and environment values
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "name":
			cfg.Name = *name
		case "assets":
			cfg.AssetRoot = *assetRoot
		case "output":
			cfg.Output = *outputName
		case "buffer-ms":
			cfg.BufferMs = *bufferMs
		case "volume":
			cfg.Volume = *volume
		case "no-mdns":
			cfg.MDNS = !*noMDNS
		case "log-file":
			cfg.LogFile = *logFile
		case "no-tui", "stream-logs":
			cfg.NoTUI = *noTUI || *streamLogs
		case "debug":
			cfg.Debug = *debug
		}
	})
}

func newOutput(cfg *config.Config) output.Output {
	if cfg.Output == config.OutputNull {
		log.Printf("Using null audio output")
		return output.NewNull()
	}
	return output.NewOtoWithBuffer(time.Duration(cfg.BufferMs) * time.Millisecond)
}

// preload warms the buffer cache with the configured assets
func preload(player *soundstage.Player, paths []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Printf("Preloading %d assets", len(paths))
	if err := player.LoadAll(ctx, paths...); err != nil {
		log.Printf("Preload failed: %v", err)
		return
	}
	log.Printf("Preload complete")
}

// handleControls applies TUI key actions to the player
func handleControls(player *soundstage.Player, controls *ui.Controls) {
	for a := range controls.Actions {
		switch a.Kind {
		case ui.ActionVolume:
			log.Printf("Volume change: %.0f%%", a.Volume*100)
			if err := player.SetVolume(a.Volume, soundstage.DefaultRampTime); err != nil {
				log.Printf("Volume change failed: %v", err)
			}
		case ui.ActionRemoveAll:
			log.Printf("Removing all sounds")
			player.RemoveAllSounds()
		}
	}
}

// statusUpdateLoop periodically pushes a player snapshot to the TUI
func statusUpdateLoop(player *soundstage.Player, srv *server.Server, updateTUI func(ui.StatusMsg)) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		state := server.Snapshot(player)

		clients := []string{}
		for _, c := range srv.Clients() {
			clients = append(clients, fmt.Sprintf("%s (%s)", c.Name, c.Addr))
		}

		msg := ui.StatusMsg{State: &state, Clients: clients}
		if err := player.LastError(); err != nil {
			msg.LastError = err.Error()
		}
		updateTUI(msg)
	}
}
