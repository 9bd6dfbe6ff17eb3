package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chadn/ai-chatbot-meetings/agent"
	"github.com/chadn/ai-chatbot-meetings/calcom"
	"github.com/chadn/ai-chatbot-meetings/config"
	"github.com/chadn/ai-chatbot-meetings/history"
	"github.com/chadn/ai-chatbot-meetings/logger"
	"github.com/chadn/ai-chatbot-meetings/metrics"
	"github.com/chadn/ai-chatbot-meetings/provider"
	"github.com/chadn/ai-chatbot-meetings/store"
	"github.com/chadn/ai-chatbot-meetings/tools"
	"github.com/chadn/ai-chatbot-meetings/web"
)

func main() {
	envFile := flag.String("env", "", "path to .env file with credentials")
	serve := flag.String("serve", "", "listen address for the HTTP service (empty runs the terminal chat)")
	dbPath := flag.String("db", "", "path to the sqlite session archive (empty disables archiving)")
	flag.Parse()

	if flag.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "unexpected positional arguments")
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, os.Stderr)

	cal, err := calcom.New(cfg.CalCom, log)
	if err != nil {
		log.Fatal().Err(err).Msg("calendar client")
	}
	registry := tools.NewRegistry(log, tools.CalendarTools(cal)...)
	providers := provider.NewCache(cfg.OpenAI)
	m := metrics.New()
	ag := agent.New(providers, registry, cfg.Agent.MaxToolTurns, cfg.CalCom.Timezone, log, m)

	var archive store.SessionStore
	if *dbPath != "" {
		sqlStore, err := store.OpenSQLite(*dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *dbPath).Msg("open session archive")
		}
		defer sqlStore.Close()
		archive = sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve != "" {
		srv := web.New(*serve, ag, archive, m, log)
		log.Info().Str("listen", *serve).Msg("starting http service")
		if err := srv.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("http service")
		}
		return
	}

	if err := runREPL(ctx, ag); err != nil {
		log.Fatal().Err(err).Msg("chat")
	}
}

// runREPL drives a single conversation over stdin and stdout.
func runREPL(ctx context.Context, ag *agent.Agent) error {
	hist := history.NewStore()
	ag.EnsureSystemMessage(hist)
	fmt.Println("Meeting assistant ready. Type a message, or /quit to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/export":
			data, err := hist.ExportJSON()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		reply, outcome, err := ag.Respond(ctx, hist, agent.Request{Content: line})
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		if reply == "" && outcome == agent.OutcomeBudgetExhausted {
			fmt.Println("(the assistant ran out of tool turns before answering)")
			continue
		}
		fmt.Println(reply)
	}
}
