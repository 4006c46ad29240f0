package main

import (
	"encoding/base64"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	custodial "custodial_swap_back"
	"custodial_swap_back/internal/custody"
	"custodial_swap_back/pkg/aggclient"
	"custodial_swap_back/pkg/handler"
	"custodial_swap_back/pkg/repository"
	"custodial_swap_back/pkg/service"
	"custodial_swap_back/pkg/solclient"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	logrus.Infoln("starting swap backend")
	if err := godotenv.Load(); err != nil {
		logrus.Infof("no .env file loaded: %s", err)
	}

	if err := InitConfig(); err != nil {
		logrus.Fatalf("config init failed: %s", err.Error())
	}

	db, err := repository.NewPostgresDB(repository.Config{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: os.Getenv("DB_PASS"),
		DBName:   viper.GetString("db.dbname"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
	if err != nil {
		logrus.Fatalf("database init failed: %s", err.Error())
	}
	logrus.Info("database connected")

	// The custody master key is injected here, once; nothing else in the
	// process ever reads the env var.
	masterKey, err := base64.StdEncoding.DecodeString(os.Getenv("CUSTODY_MASTER_KEY"))
	if err != nil {
		logrus.Fatalf("CUSTODY_MASTER_KEY is not valid base64: %s", err.Error())
	}
	store, err := custody.New(masterKey)
	if err != nil {
		logrus.Fatalf("custody store init failed: %s", err.Error())
	}

	agg := aggclient.NewClient(
		viper.GetString("aggregator.base_url"),
		viper.GetString("aggregator.fallback_url"),
		viper.GetString("aggregator.price_url"),
		viper.GetDuration("aggregator.timeout"),
	)
	chain := solclient.New(solclient.Config{
		URL:             viper.GetString("rpc.url"),
		Commitment:      viper.GetString("rpc.commitment"),
		SendRetries:     viper.GetInt("rpc.send_retries"),
		SendRetryPause:  viper.GetDuration("rpc.send_retry_pause"),
		ConfirmAttempts: viper.GetInt("rpc.confirm_attempts"),
		ConfirmInterval: viper.GetDuration("rpc.confirm_interval"),
	})

	repos := repository.NewRepository(db)
	services := service.NewService(repos, store, agg, chain, service.Config{
		MaxLinkedWallets:              viper.GetInt("swap.max_linked_wallets"),
		FeeReserveLamports:            viper.GetInt64("swap.fee_reserve_lamports"),
		ComputeUnitPriceMicroLamports: viper.GetUint64("swap.compute_unit_price_micro_lamports"),
		DecimalsCacheTTL:              10 * time.Minute,
	})
	handlers := handler.NewHandler(services)

	srv := new(custodial.Server)
	if err := srv.Run(os.Getenv("PORT"), handlers.InitRoute()); err != nil {
		logrus.Fatalf("server stopped: %s", err)
	}
}

func InitConfig() error {
	viper.AddConfigPath("configs")
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}
