package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tonpay/solvere/internal/blockchain"
	"github.com/tonpay/solvere/internal/config"
	"github.com/tonpay/solvere/internal/http_api"
	"github.com/tonpay/solvere/internal/notificator"
	"github.com/tonpay/solvere/internal/pricing"
	"github.com/tonpay/solvere/internal/repository"
	"github.com/tonpay/solvere/internal/solvere"
	"github.com/tonpay/solvere/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "solvere",
		Usage: "Solvere is a payment intent and on-chain settlement verification service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "wallet-address", Aliases: []string{"w"}, Usage: "Receiving TON wallet address"},
			&cli.StringFlag{Name: "network", Aliases: []string{"n"}, Usage: "TON network (mainnet or testnet)"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("wallet-address") {
		cfg.WalletAddress = c.String("wallet-address")
	}
	if c.IsSet("network") {
		cfg.Network = c.String("network")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Initialize chain client and price oracle
	chainClient := blockchain.NewToncenter(cfg.ToncenterEndpoint(), cfg.TonAPIKey, log)
	oracle := pricing.NewOracle(log, "")

	// Initialize notificator (optional)
	var telegram *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegram, err = notificator.NewTelegramNotificator(log, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	notif := notificator.NewNotificator(log, telegram)

	// Create Solvere instance
	solvereApp := solvere.NewSolvere(db, chainClient, oracle, notif, log, cfg)

	apiServer := http_api.NewHTTPServer(solvereApp, cfg.APIPort, log)

	go apiServer.Start()
	// Start the application
	solvereApp.Start()

	return nil
}
