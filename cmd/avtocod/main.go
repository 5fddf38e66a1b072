package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/avtocod/avtocod-go"
	"github.com/avtocod/avtocod-go/proxy"
	"github.com/avtocod/avtocod-go/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// Credentials may come from a .env file; its absence is fine.
	_ = godotenv.Load()

	var (
		apiURL       = pflag.String("api-url", "", "API endpoint URL. Empty uses the production endpoint.")
		proxies      = pflag.StringArray("proxy", nil, "Proxy URL (socks4://, socks5://, http://, https://). Repeat the flag to build a chain, first hop nearest the client.")
		timeout      = pflag.Duration("timeout", 60*time.Second, "Per-request timeout")
		pollInterval = pflag.Duration("poll-interval", 3*time.Second, "How often to poll an unfinished report")
		token        = pflag.String("token", os.Getenv("AVTOCOD_TOKEN"), "API token. Empty logs in with email/password.")
		email        = pflag.String("email", os.Getenv("AVTOCOD_EMAIL"), "Account email, used when no token is given")
		password     = pflag.String("password", os.Getenv("AVTOCOD_PASSWORD"), "Account password, used when no token is given")
		queryType    = pflag.String("query-type", string(types.QueryGRZ), "Query type: GRZ, VIN or BODY")
		verbose      = pflag.Bool("verbose", false, "Enable debug logging")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	queries := pflag.Args()
	if len(queries) == 0 {
		return errors.New("no queries given (pass one or more GRZ/VIN/BODY values as arguments)")
	}

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()

	opts := []avtocod.Option{
		avtocod.WithTimeout(*timeout),
		avtocod.WithLogger(log),
	}
	if *apiURL != "" {
		opts = append(opts, avtocod.WithAPIURL(*apiURL))
	}
	if spec := proxySpec(*proxies); spec != nil {
		opts = append(opts, avtocod.WithProxy(spec))
	}
	if *token != "" {
		opts = append(opts, avtocod.WithToken(*token))
	}

	client, err := avtocod.New(opts...)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *token == "" {
		if *email == "" || *password == "" {
			return errors.New("either --token or --email and --password are required")
		}
		if _, err := client.Login(ctx, *email, *password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
		log.Info().Msg("logged in")
	}

	qt := types.QueryType(strings.ToUpper(*queryType))

	g, ctx := errgroup.WithContext(ctx)

	reports := make([]*types.Report, len(queries))
	for i, query := range queries {
		g.Go(func() error {
			created, err := client.CreateReport(ctx, query, qt)
			if err != nil {
				return fmt.Errorf("create report for %q: %w", query, err)
			}
			log.Info().Str("query", query).Str("uuid", created.UUID).Msg("report requested")

			report, err := client.WaitReport(ctx, created.UUID, *pollInterval)
			if err != nil {
				return fmt.Errorf("wait report for %q: %w", query, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func proxySpec(urls []string) *proxy.Spec {
	switch len(urls) {
	case 0:
		return nil
	case 1:
		return proxy.Single(urls[0])
	default:
		return proxy.ChainURLs(urls...)
	}
}
