// Command triectl is a command-line client for trie-server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kumarlokesh/sysd/exercises/cow-trie/internal/api"
)

// Global flags
var (
	helpFlag = flag.Bool("help", false, "Show help message")
	addr     = flag.String("addr", "http://localhost:8080", "trie-server base URL")
	timeout  = flag.Duration("timeout", 5*time.Second, "request timeout")
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, client *api.Client, args []string) error
}

// Available commands
var commands = []Command{
	{
		Name:        "get",
		Description: "Print the value stored under a key",
		Run:         runGet,
	},
	{
		Name:        "put",
		Description: "Store a value under a key",
		Run:         runPut,
	},
	{
		Name:        "remove",
		Description: "Remove a key",
		Run:         runRemove,
	},
	{
		Name:        "stats",
		Description: "Show the current version and key count",
		Run:         runStats,
	},
}

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [global flags] <command> [arguments]\n", os.Args[0])
		fmt.Fprintf(out, "\nAvailable commands:\n")
		for _, cmd := range commands {
			fmt.Fprintf(out, "  %-10s %s\n", cmd.Name, cmd.Description)
		}
		fmt.Fprintf(out, "\nGlobal flags:\n")
		flag.PrintDefaults()

		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  \t%s put -key cat -value meow\n", os.Args[0])
		fmt.Fprintf(out, "  \t%s get -key cat\n", os.Args[0])
		fmt.Fprintf(out, "  \t%s remove -key cat\n", os.Args[0])
	}

	flag.Parse()

	if *helpFlag || len(flag.Args()) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	var cmd *Command
	for i := range commands {
		if commands[i].Name == flag.Arg(0) {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		flag.Usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := api.NewClient(*addr, nil)
	if err := cmd.Run(ctx, client, flag.Args()[1:]); err != nil {
		cancel()
		log.Fatalf("%s: %v", cmd.Name, err)
	}
}

func parseKey(name string, args []string, withValue bool) (key, value string, err error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	keyFlag := fs.String("key", "", "key to operate on (may be empty)")
	var valueFlag *string
	if withValue {
		valueFlag = fs.String("value", "", "value to store")
	}
	if err := fs.Parse(args); err != nil {
		return "", "", err
	}
	if valueFlag != nil {
		value = *valueFlag
	}
	return *keyFlag, value, nil
}

func runGet(ctx context.Context, client *api.Client, args []string) error {
	key, _, err := parseKey("get", args, false)
	if err != nil {
		return err
	}

	value, err := client.Get(ctx, key)
	if errors.Is(err, api.ErrNotFound) {
		fmt.Println("not found")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(value)
	return nil
}

func runPut(ctx context.Context, client *api.Client, args []string) error {
	key, value, err := parseKey("put", args, true)
	if err != nil {
		return err
	}
	if err := client.Put(ctx, key, value); err != nil {
		return err
	}
	fmt.Printf("stored %q\n", key)
	return nil
}

func runRemove(ctx context.Context, client *api.Client, args []string) error {
	key, _, err := parseKey("remove", args, false)
	if err != nil {
		return err
	}
	if err := client.Remove(ctx, key); err != nil {
		return err
	}
	fmt.Printf("removed %q\n", key)
	return nil
}

func runStats(ctx context.Context, client *api.Client, args []string) error {
	stats, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("version: %d\nkeys:    %d\n", stats.Version, stats.Keys)
	return nil
}
