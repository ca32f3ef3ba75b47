// ABOUTME: Entry point for soundstage-ctl
// ABOUTME: Sends player commands to a soundstage daemon over the control protocol
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/soundstage/internal/version"
	"github.com/Sendspin/soundstage/pkg/discovery"
	"github.com/Sendspin/soundstage/pkg/protocol"
)

var (
	serverAddr = flag.String("server", "", "Server address host:port (default: discover via mDNS)")
	timeout    = flag.Duration("timeout", 5*time.Second, "Per-command timeout")
	wait       = flag.Duration("wait", 0, "After load, wait up to this long for load_complete or load_error")
	verbose    = flag.Bool("v", false, "Log protocol activity to stderr")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fmt.Fprintln(os.Stderr, "\nflags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	args := flag.Args()
	watch := len(args) == 1 && args[0] == "watch"

	var cmds []protocol.PlayerCommand
	if !watch {
		var err error
		cmds, err = buildCommands(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "soundstage-ctl: %v\n\n", err)
			flag.Usage()
			os.Exit(2)
		}
	}

	addr, err := resolveServer()
	if err != nil {
		fatal(err)
	}

	client := protocol.NewClient(protocol.Config{
		ServerAddr: addr,
		Name:       "soundstage-ctl",
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product + " CLI",
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	})
	if err := client.Connect(); err != nil {
		fatal(err)
	}
	defer func() {
		_ = client.SendGoodbye("user_request")
		client.Close()
	}()

	if watch {
		watchEvents(client)
		return
	}

	for _, cmd := range cmds {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		res, err := client.Do(ctx, cmd)
		cancel()
		if err != nil {
			var cmdErr *protocol.CommandError
			if errors.As(err, &cmdErr) {
				fatal(fmt.Errorf("%s failed [%s]: %s", cmd.Op, cmdErr.Code, cmdErr.Message))
			}
			fatal(err)
		}
		fmt.Println(formatResult(cmd.Op, res))
	}

	if *wait > 0 && cmds[0].Op == protocol.OpLoad {
		if err := waitForLoads(client, *wait); err != nil {
			fatal(err)
		}
	}
}

// resolveServer returns -server or the first server found via mDNS
func resolveServer() (string, error) {
	if *serverAddr != "" {
		return *serverAddr, nil
	}

	servers, err := discovery.Discover(3 * time.Second)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}
	if len(servers) == 0 {
		return "", fmt.Errorf("no soundstage server found, use -server")
	}
	log.Printf("Discovered %s at %s", servers[0].Name, servers[0].Addr())
	return servers[0].Addr(), nil
}

// waitForLoads blocks until the load batch completes or fails
func waitForLoads(client *protocol.Client, limit time.Duration) error {
	deadline := time.After(limit)
	for {
		select {
		case ev := <-client.Events:
			switch ev.Kind {
			case protocol.EventLoadComplete:
				fmt.Println("loaded")
				return nil
			case protocol.EventLoadError:
				return fmt.Errorf("load failed [%s]: %s", ev.Code, ev.Error)
			}
		case <-deadline:
			return fmt.Errorf("timed out waiting for loads")
		}
	}
}

func watchEvents(client *protocol.Client) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev := <-client.Events:
			fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), formatEvent(ev))
		case <-sigChan:
			return
		case <-ticker.C:
			if !client.IsConnected() {
				fmt.Fprintln(os.Stderr, "soundstage-ctl: connection closed")
				return
			}
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "soundstage-ctl: %v\n", err)
	os.Exit(1)
}
