// Command readingsctl is a command line client for the readings API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"CapIot.readings/pkg/client"
	"github.com/joho/godotenv"
)

const usage = `usage: readingsctl [flags] <command> [args]

commands:
  health                          check service health
  routes                          list available routes
  save <v1> <v2> <v3> <v4> <v5>   save a reading (numbers, true/false, null or text)
  list                            list readings (-limit, -order-by, -order)
  get <id>                        fetch one reading
  latest                          fetch the most recent reading
  range <startDate> <endDate>     readings between two YYYY-MM-DD dates (-limit)
  delete <id>                     delete one reading

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("readingsctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	baseURL := fs.String("url", envOr("READINGS_URL", "http://localhost:3001"), "API base URL")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	limit := fs.Int("limit", 0, "maximum number of readings (list, range)")
	orderBy := fs.String("order-by", "", "sort field: createdAt or timestamp (list)")
	order := fs.String("order", "", "sort direction: asc or desc (list)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c := client.New(*baseURL, client.WithTimeout(*timeout))
	cmd, rest := fs.Arg(0), fs.Args()[1:]

	var (
		out any
		err error
	)
	switch cmd {
	case "health":
		out, err = c.Health(ctx)
	case "routes":
		out, err = c.Routes(ctx)
	case "save":
		if len(rest) != 5 {
			return errors.New("save needs exactly five values")
		}
		var values [5]any
		for i, raw := range rest {
			values[i] = parseValue(raw)
		}
		out, err = c.Save(ctx, values)
	case "list":
		out, err = c.List(ctx, client.ListOptions{Limit: *limit, OrderBy: *orderBy, Order: *order})
	case "get":
		if len(rest) != 1 {
			return errors.New("get needs an id")
		}
		out, err = c.Get(ctx, rest[0])
	case "latest":
		out, err = c.Latest(ctx)
	case "range":
		if len(rest) != 2 {
			return errors.New("range needs startDate and endDate")
		}
		out, err = c.Range(ctx, rest[0], rest[1], *limit)
	case "delete":
		if len(rest) != 1 {
			return errors.New("delete needs an id")
		}
		out, err = c.Delete(ctx, rest[0])
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// parseValue turns a command line argument into the JSON value it spells.
func parseValue(raw string) any {
	switch raw {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
