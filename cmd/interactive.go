package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/etnz/cryptofolio/advisor"
	"github.com/etnz/cryptofolio/menu"
	"github.com/etnz/cryptofolio/web"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type menuCmd struct{}

func (*menuCmd) Name() string     { return "menu" }
func (*menuCmd) Synopsis() string { return "manage the portfolio from numbered menus" }
func (*menuCmd) Usage() string {
	return `cfo menu

  Starts the interactive menu: add, edit and delete entries, analyze the
  portfolio once or periodically, browse wallets, chart the coins and
  manage the settings.

`
}

func (*menuCmd) SetFlags(f *flag.FlagSet) {}

func (*menuCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		term, err := menu.NewTerminal()
		if err != nil {
			return fail("%v", err)
		}
		defer term.Close()

		m := menu.New(a.tracker, term, stdout, menu.Config{
			Interval:   a.cfg.AutoUpdate.Interval,
			MaxUpdates: a.cfg.AutoUpdate.MaxUpdates,
		})
		m.Markdown = fprintMarkdown
		if err := m.Run(ctx); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	})
}

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the web dashboard" }
func (*serveCmd) Usage() string {
	return `cfo serve [-addr <host:port>]

  Serves the dashboard: portfolio, analysis with auto-update,
  visualization and settings pages, plus a JSON API under /api,
  /healthz and /metrics. Stops on Ctrl+C.

`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address, defaults to the configuration")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		addr := c.addr
		if addr == "" {
			addr = a.cfg.Web.Addr
		}
		srv, err := web.New(a.tracker, web.Config{
			Addr:       addr,
			Release:    a.cfg.Web.Release,
			Interval:   a.cfg.AutoUpdate.Interval,
			MaxUpdates: a.cfg.AutoUpdate.MaxUpdates,
			Settings:   a.cfg.YAML,
		}, a.log)
		if err != nil {
			return fail("%v", err)
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := srv.Run(ctx); err != nil {
			return fail("%v", err)
		}
		return subcommands.ExitSuccess
	})
}

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the portfolio advisor" }
func (*assistCmd) Usage() string {
	return `cfo assist [<question>]

  Starts a chat with a Gemini advisor that reads the portfolio and the
  market news. The API key comes from the assist section of the
  configuration, or from GEMINI_API_KEY. Type 'bye' to exit.

`
}

func (*assistCmd) SetFlags(f *flag.FlagSet) {}

func (*assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	return withApp(ctx, func(a *app) subcommands.ExitStatus {
		var cc *genai.ClientConfig
		if key := a.cfg.Assist.APIKey; key != "" {
			cc = &genai.ClientConfig{APIKey: key, Backend: genai.BackendGeminiAPI}
		}
		client, err := genai.NewClient(ctx, cc)
		if err != nil {
			return fail("cannot create the Gemini client: %v", err)
		}

		model := a.cfg.Assist.Model
		adv := advisor.New(stdout, os.Stdin, model,
			advisor.NewAccountant(model, a.tracker),
			advisor.NewMarketAnalyst(model),
		)
		adv.Markdown = fprintMarkdown
		if err := adv.Run(ctx, client, prompts...); err != nil {
			fmt.Fprintln(os.Stderr, "Advisor failed:", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	})
}
