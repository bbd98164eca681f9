// Command shrtlin is a terminal client for the shortener. The first
// invocation mints an anonymous identity by solving a proof-of-work
// challenge; the tokens are kept under the user's home directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/samoylenkodmitry/shrtlin/client"
	"github.com/samoylenkodmitry/shrtlin/core"
)

const usage = `Usage: shrtlin [-server URL] <command> [args]

Commands:
  shorten <url>         create a short link
  list [page]           list your links
  remove <id>           delete a link by id
  nick <name>           change your nick
  clicks <id> <period>  click stats (MINUTE, HOUR, DAY, MONTH, YEAR)
  whoami                show the current identity
  login <refreshToken>  adopt an identity from another device
  logout                reset to a brand-new identity
`

func main() {
	server := flag.String("server", envOr("SHRTLIN_SERVER", "https://shrtl.in"), "server base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fatal(err)
	}
	tokens := client.NewFileTokenStore(filepath.Join(home, ".shrtlin", "tokens.json"))
	api := client.NewAPI(*server)
	controller := client.NewAuthController(api, tokens)

	ctx := context.Background()

	if err := run(ctx, controller, api, args); err != nil {
		fatal(err)
	}
}

func run(ctx context.Context, controller *client.AuthController, api *client.API, args []string) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "shorten":
		if len(rest) != 1 {
			return fmt.Errorf("usage: shorten <url>")
		}
		return controller.Do(ctx, func(token string) error {
			info, err := api.Shorten(ctx, token, rest[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s -> %s (id %d)\n", info.OriginalURL, info.ShortURL, info.ID)
			return nil
		})

	case "list":
		page := 1
		if len(rest) == 1 {
			p, err := strconv.Atoi(rest[0])
			if err != nil || p < 1 {
				return fmt.Errorf("bad page %q", rest[0])
			}
			page = p
		}
		return controller.Do(ctx, func(token string) error {
			resp, err := api.Urls(ctx, token, page, 20)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSHORT\tORIGINAL\tCLICKS")
			for _, u := range resp.Urls {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", u.ID, u.ShortURL, u.OriginalURL, u.Clicks)
			}
			w.Flush()
			fmt.Printf("page %d of %d\n", page, resp.TotalPages)
			return nil
		})

	case "remove":
		if len(rest) != 1 {
			return fmt.Errorf("usage: remove <id>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", rest[0])
		}
		return controller.Do(ctx, func(token string) error {
			ok, err := api.RemoveURL(ctx, token, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no link with id %d", id)
			}
			fmt.Println("removed")
			return nil
		})

	case "nick":
		if len(rest) != 1 {
			return fmt.Errorf("usage: nick <name>")
		}
		return controller.Do(ctx, func(token string) error {
			ok, err := api.UpdateNick(ctx, token, rest[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("nick not updated")
			}
			fmt.Println("nick updated")
			return nil
		})

	case "clicks":
		if len(rest) != 2 {
			return fmt.Errorf("usage: clicks <id> <period>")
		}
		id, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad id %q", rest[0])
		}
		return controller.Do(ctx, func(token string) error {
			stats, err := api.Clicks(ctx, token, id, core.Period(rest[1]))
			if err != nil {
				return err
			}
			if len(stats.Clicks) == 0 {
				fmt.Println("no clicks in this period")
				return nil
			}
			for bucket, n := range stats.Clicks {
				fmt.Printf("%s\t%d\n", bucket, n)
			}
			return nil
		})

	case "whoami":
		state, err := controller.CheckAuth(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("id %d, nick %s\n", state.Result.User.ID, state.Result.User.Nick)
		return nil

	case "login":
		if len(rest) != 1 {
			return fmt.Errorf("usage: login <refreshToken>")
		}
		state, err := controller.LoginByRefreshToken(ctx, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("logged in as id %d, nick %s\n", state.Result.User.ID, state.Result.User.Nick)
		return nil

	case "logout":
		state, err := controller.Logout(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("new identity: id %d, nick %s\n", state.Result.User.ID, state.Result.User.Nick)
		return nil

	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "shrtlin:", err)
	os.Exit(1)
}
