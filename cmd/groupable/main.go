package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/groupable/groupable/internal/app"
	"github.com/groupable/groupable/internal/config"
	"github.com/groupable/groupable/internal/security"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	command := "serve"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		if errRun := app.RunServer(ctx, *configPath); errRun != nil {
			log.WithError(errRun).Fatal("server exited")
		}
	case "migrate":
		if errMigrate := app.Migrate(ctx, *configPath); errMigrate != nil {
			log.WithError(errMigrate).Fatal("migrate failed")
		}
		log.Info("migrations applied")
	case "token":
		if errToken := issueToken(*configPath, flag.Args()[1:]); errToken != nil {
			log.WithError(errToken).Fatal("token failed")
		}
	default:
		fmt.Fprintf(os.Stderr, "usage: groupable [-config path] [serve|migrate|token <user-id>]\n")
		os.Exit(2)
	}
}

// issueToken prints an actor JWT for the given user ID. Intended for
// development and scripting against the API.
func issueToken(configPath string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("token: user id required")
	}
	userID, errParse := strconv.ParseUint(args[0], 10, 64)
	if errParse != nil || userID == 0 {
		return fmt.Errorf("token: invalid user id %q", args[0])
	}
	cfg, errLoad := config.Load(configPath)
	if errLoad != nil {
		return errLoad
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("token: jwt secret is required")
	}
	token, errSign := security.GenerateActorToken(cfg.JWT.Secret, userID, "", cfg.JWT.Expiry())
	if errSign != nil {
		return errSign
	}
	fmt.Println(token)
	return nil
}
