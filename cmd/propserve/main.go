// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the properties key completion server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

PropServe suggests keys for .properties style documents. The keys come from a
dictionary, itself a key=value file, named on the first line of the edited
document:

	# vscode_properties_completion_proposals=/path/to/keys.properties

The dictionary can also be an http:// or https:// URL. Local dictionaries are
reloaded whenever their modification time changes; remote ones are fetched
once per process.

# Usage

Start the server with default settings:

	propserve

Enable debug logs and use a custom config file:

	propserve -d -config ./propserve.toml

Run in CLI mode against one dictionary for interactive testing:

	propserve -c -source ./keys.properties -limit 10

Print a dictionary the way the parser sees it:

	propserve -dump -source https://example.com/keys.properties

# Configuration

Runtime configuration is a TOML file, created with defaults if it does not
exist:

	[server]
	max_results = 0
	workers = 4

	[fetch]
	timeout_seconds = 30

	[cli]
	default_limit = 24

Server mode watches the file and applies max_results changes without restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package server
for the request and response shapes.

	{"id": "req1", "action": "complete", "text": "...", "line": 1, "character": 3}
	{"id": "req1", "items": [{"label": "server.port", "detail": "Listen port", "kind": "keyword"}], "c": 1, "t": 145}

# Command Line Flags

	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-config string
	    Path to a config file (default resolved from XDG / APPDATA)
	-source string
	    Dictionary file or URL for CLI and dump modes
	-limit int
	    Number of suggestions to print in CLI mode (default from config)
	-dump
	    Parse the -source dictionary and print its entries
	-version
	    Show current version
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/propserve/internal/cli"
	"github.com/bastiangx/propserve/internal/logger"
	"github.com/bastiangx/propserve/pkg/completion"
	"github.com/bastiangx/propserve/pkg/config"
	"github.com/bastiangx/propserve/pkg/dictionary"
	"github.com/bastiangx/propserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "propserve"
	gh      = "https://github.com/bastiangx/propserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, cache and provider, then hands over to the server or CLI.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Path to a custom config file")
	source := flag.String("source", "", "Dictionary file or http(s) URL for CLI and dump modes")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to print in CLI mode")
	dump := flag.Bool("dump", false, "Parse the -source dictionary and print its entries")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache := dictionary.NewCache(dictionary.WithFetcher(dictionary.NewFetcher(appConfig.Fetch.Timeout())))
	provider := completion.NewProvider(cache, appConfig.Server.MaxResults)

	if *dump {
		if err := dumpSource(ctx, cache, *source); err != nil {
			log.Fatalf("Dump failed: %v", err)
		}
		return
	}

	// CLI would be mainly used for testing dictionaries and dbg purposes.
	if *cliMode {
		if *source == "" {
			log.Fatal("CLI mode needs a dictionary, use -source")
		}
		if !isFlagSet("limit") {
			*limit = appConfig.CLI.DefaultLimit
		}
		log.SetReportTimestamp(false)
		log.Debug("Input info:", "source", *source, "limit", *limit)

		inputHandler := cli.NewInputHandler(provider, *source, *limit)
		if err := inputHandler.Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	if err := config.Watch(ctx, configPath, func(c *config.Config) {
		provider.SetMaxResults(c.Server.MaxResults)
		log.Debugf("Config reloaded: max_results=%d", c.Server.MaxResults)
	}); err != nil {
		log.Warnf("Config changes will need a restart: %v", err)
	}

	showStartupInfo(configPath)

	srv := server.NewServer(provider, appConfig.Server.Workers)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// dumpSource loads one dictionary and prints it back in key=value form.
func dumpSource(ctx context.Context, cache *dictionary.Cache, id string) error {
	if id == "" {
		return errors.New("no dictionary given, use -source")
	}
	dict, err := cache.GetOrLoad(ctx, dictionary.ParseSource(id))
	if err != nil {
		return err
	}
	fmt.Print(dictionary.Format(dict.Entries))
	log.Infof("%d entries from %s", len(dict.Entries), id)
	return nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printVersion() {
	versionLog := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	versionLog.SetStyles(styles)

	versionLog.Print("")
	versionLog.Print("[ PropServe ] Serves .properties key completions")
	versionLog.Print("", "version", Version)
	versionLog.Print("")
	versionLog.Print("use -h or --help to see available options")
	versionLog.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(configPath string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " PropServe ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("config: ( %s )", configPath)
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")

	log.SetLevel(currentLevel)
}
