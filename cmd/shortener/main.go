package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/skrylnikov/cutly/internal/app/server"
	"github.com/skrylnikov/cutly/internal/app/service"
	"github.com/skrylnikov/cutly/internal/config"
	"github.com/skrylnikov/cutly/internal/logger"
	"github.com/skrylnikov/cutly/internal/repository"
	"github.com/skrylnikov/cutly/internal/storage"

	_ "net/http/pprof"
)

var buildVersion string
var buildDate string
var buildCommit string

func main() {
	options := config.Parse()

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)

	log := logger.New()
	defer func() {
		_ = log.Log.Sync()
	}()

	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	zapLogger := log.Log

	if options.EnablePprof {
		go func() {
			zapLogger.Info("Starting pprof server", zap.String("addr", "localhost:6060"))
			if err := http.ListenAndServe("localhost:6060", nil); err != nil {
				zapLogger.Error("pprof server error", zap.Error(err))
			}
		}()
	}

	var s service.Storage
	var err error

	switch {
	case options.DatabaseDSN != "":
		zapLogger.Info("using postgres", zap.String("dsn", options.DatabaseDSN))
		db := repository.InitDB(options.DatabaseDSN, zapLogger)
		defer db.Close()
		s = repository.CreateLinkRepository(db, zapLogger)
	case options.SQLitePath != "":
		zapLogger.Info("using sqlite", zap.String("path", options.SQLitePath))
		db := repository.InitSQLite(options.SQLitePath, zapLogger)
		defer db.Close()
		s = repository.CreateSQLiteRepository(db, zapLogger)
	case options.FilePath != "":
		zapLogger.Info("using file storage", zap.String("filePath", options.FilePath))
		fs, ferr := storage.NewFileStorage(options.FilePath, zapLogger)
		if ferr != nil {
			panic(ferr)
		}
		defer fs.Close()
		s = fs
	default:
		zapLogger.Info("using in memory storage")
		s, err = storage.CreateMemoryStorage()
		if err != nil {
			panic(err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	urlService := service.NewLink(ctx, s, service.NewShortIDGenerator(), zapLogger, options.BaseURL)
	auth := service.NewAuth(options.JWTSecret, options.BaseURL)
	oidc := service.NewOIDC(service.OIDCConfig{
		Issuer:       options.OIDCIssuer,
		ClientID:     options.OIDCClientID,
		ClientSecret: options.OIDCClientSecret,
		RedirectURL:  strings.TrimRight(options.BaseURL, "/") + "/api/auth/callback",
	}, zapLogger)

	if oidc.Configured() {
		zapLogger.Info("oidc configured, creation requires login", zap.String("issuer", options.OIDCIssuer))
	} else {
		zapLogger.Info("oidc not configured, anonymous creation allowed")
	}

	r := server.Init(zapLogger, true, urlService, auth, oidc, options.DefaultLength)

	if options.EnableHTTPS {
		manager := &autocert.Manager{
			Cache:      autocert.DirCache("cache-dir"),
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(hostOf(options.BaseURL)),
		}
		srv := &http.Server{
			Addr:      ":443",
			Handler:   r,
			TLSConfig: manager.TLSConfig(),
		}
		zapLogger.Info("Server is running with TLS", zap.String("hostname", options.Port))
		if err := srv.ListenAndServeTLS("", ""); err != nil {
			panic(err)
		}
	} else {
		zapLogger.Info("Server is running", zap.String("hostname", options.Port))
		if err := http.ListenAndServe(options.Port, r); err != nil {
			panic(err)
		}
	}
}

func hostOf(baseURL string) string {
	host := strings.TrimPrefix(baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
