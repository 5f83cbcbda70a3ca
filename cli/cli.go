package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/willmadison/donation-flow/donations"
	donationshttp "github.com/willmadison/donation-flow/donations/http"
)

// Environment provides an abstraction around the execution environment
type Environment struct {
	Stderr io.Writer
	Stdout io.Writer
	Stdin  io.Reader
	Args   []string
	UI     fs.FS
}

type ServeCmd struct {
	Port                 string        `env:"PORT" default:"3000" help:"port to listen on."`
	Currency             string        `env:"CURRENCY" default:"aud" help:"currency used when a donation does not name one."`
	StripeSecretKey      string        `env:"STRIPE_SECRET_KEY" required:"" help:"Stripe secret API key."`
	StripeWebhookSecret  string        `env:"STRIPE_WEBHOOK_SECRET" required:"" help:"signing secret of the webhook endpoint."`
	StripePublishableKey string        `env:"STRIPE_PUBLISHABLE_KEY" help:"publishable key handed to the donation page."`
	WebhookTolerance     time.Duration `env:"STRIPE_WEBHOOK_TOLERANCE" default:"5m" help:"maximum age of a webhook signature."`
	StripeAPIURL         string        `env:"STRIPE_API_URL" hidden:"" help:"override the Stripe API host (e.g. stripe-mock)."`
	PublicDir            string        `env:"PUBLIC_DIR" type:"existingdir" help:"serve the donation page from this directory instead of the embedded copy."`
}

func (cmd *ServeCmd) Run(env *Environment, store donations.Store, logger zerolog.Logger) error {
	if cmd.StripeWebhookSecret == "" {
		return errors.New("missing Stripe webhook signing secret")
	}

	opts := []donationshttp.ClientOption{donationshttp.WithLogger(logger)}
	if cmd.StripeAPIURL != "" {
		opts = append(opts, donationshttp.WithBaseURL(cmd.StripeAPIURL))
	}

	client, err := donationshttp.NewStripeClient(cmd.StripeSecretKey, opts...)
	if err != nil {
		return err
	}

	static, err := cmd.static(env)
	if err != nil {
		return err
	}

	if cmd.StripePublishableKey == "" {
		logger.Warn().Msg("STRIPE_PUBLISHABLE_KEY is not set, the donation page will not load the payment form")
	}

	gin.SetMode(gin.ReleaseMode)

	router := donationshttp.NewRouter(donationshttp.RouterConfig{
		Client:          client,
		Store:           store,
		Verifier:        donationshttp.NewWebhookVerifier(cmd.StripeWebhookSecret, cmd.WebhookTolerance),
		DefaultCurrency: cmd.Currency,
		PublishableKey:  cmd.StripePublishableKey,
		Static:          static,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cmd.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)

	go func() {
		logger.Info().Msgf("Server listening on port %s", cmd.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("listen error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info().Msg("Server exited gracefully")

	return nil
}

func (cmd *ServeCmd) static(env *Environment) (http.FileSystem, error) {
	if cmd.PublicDir != "" {
		return http.Dir(cmd.PublicDir), nil
	}

	if env.UI == nil {
		return nil, nil
	}

	public, err := fs.Sub(env.UI, "static/public")
	if err != nil {
		return nil, err
	}

	return http.FS(public), nil
}

type DonorsListCmd struct{}

func (cmd *DonorsListCmd) Run(env *Environment, store donations.Store) error {
	donors, err := store.List(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tNAME\tAMOUNT")

	for _, d := range donors {
		fmt.Fprintf(w, "%s\t%s\t%.2f\n", d.Time.Format(time.RFC3339), d.Name, d.Amount)
	}

	return w.Flush()
}

type DonorsAddCmd struct {
	Name   string  `help:"display name, defaults to Anonymous."`
	Amount float64 `required:"" help:"amount given, in major currency units."`
}

func (cmd *DonorsAddCmd) Run(env *Environment, store donations.Store, logger zerolog.Logger) error {
	if cmd.Amount < 0 {
		return errors.New("amount must not be negative")
	}

	donor := donations.NewDonor(cmd.Name, cmd.Amount, time.Now())

	if err := store.Prepend(context.Background(), donor); err != nil {
		return err
	}

	logger.Info().Str("donor", donor.Name).Float64("amount", donor.Amount).Msg("donor recorded")

	return nil
}

type DonorsCmd struct {
	List DonorsListCmd `cmd:"" default:"1" help:"Lists the most recent donors, newest first."`
	Add  DonorsAddCmd  `cmd:"" help:"Records a donation received outside of Stripe."`
}

type CLI struct {
	AppEnv      string `env:"APP_ENV" default:"development" help:"development logs are human readable, anything else logs JSON."`
	LogLevel    string `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"minimum log level."`
	DonorsFile  string `env:"DONORS_FILE" default:"donors.json" type:"path" help:"donor log file, used when no DATABASE_URL is set."`
	DatabaseURL string `env:"DATABASE_URL" help:"file: (sqlite) or libsql:// database holding the donor log."`

	Serve  ServeCmd  `cmd:"" help:"Serves the donation page, payment intent API and Stripe webhook."`
	Donors DonorsCmd `cmd:"" help:"Inspects or amends the donor log."`
}

// Run loads .env files and executes the command named in env.Args.
func Run(env Environment) int {
	// Variables already in the environment win, so .env.local goes first.
	for _, file := range []string{".env.local", ".env"} {
		_ = godotenv.Load(file)
	}

	return run(env)
}

func run(env Environment) int {
	app := CLI{}

	parser, err := kong.New(&app,
		kong.Name("donations"),
		kong.Description("donation page, payment intents and Stripe webhook ingestion"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(env.Stdout, env.Stderr),
	)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return 1
	}

	cntx, err := parser.Parse(env.Args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	logger := NewLogger(env.Stderr, app.AppEnv, app.LogLevel)

	store, err := donations.OpenStore(context.Background(), donations.StoreConfig{
		DatabaseURL: app.DatabaseURL,
		DonorsFile:  app.DonorsFile,
		Logger:      logger,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to open donor store")
		return 1
	}
	defer store.Close()

	cntx.BindTo(store, (*donations.Store)(nil))
	cntx.Bind(logger)

	if err := cntx.Run(&env); err != nil {
		logger.Error().Err(err).Msg("command failed")
		return 1
	}

	return 0
}
