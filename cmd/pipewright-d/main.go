package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pipewright/pipewright/pkg/api"
	"github.com/pipewright/pipewright/pkg/audit"
	"github.com/pipewright/pipewright/pkg/editor"
	"github.com/pipewright/pipewright/pkg/store"
	redisstore "github.com/pipewright/pipewright/pkg/store/redis"
)

func main() {
	fmt.Println(`{"level":"info","msg":"system_started","component":"pipewright-d"}`)

	config, err := LoadConfig(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Printf(`{"level":"fatal","msg":"failed_to_load_config","error":"%v"}`+"\n", err)
		os.Exit(1)
	}

	var (
		projects store.ProjectStore
		cleanup  func() error
	)
	if config.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{Addr: config.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			fmt.Printf(`{"level":"fatal","msg":"failed_to_connect_redis","addr":"%s","error":"%v"}`+"\n", config.RedisAddr, err)
			os.Exit(1)
		}
		projects = redisstore.NewProjectStore(rdb)
		cleanup = rdb.Close
		fmt.Printf(`{"level":"info","msg":"store_initialized","backend":"redis","addr":"%s"}`+"\n", config.RedisAddr)
	} else {
		st, err := store.NewStore(config.DBPath)
		if err != nil {
			fmt.Printf(`{"level":"fatal","msg":"failed_to_init_store","error":"%v"}`+"\n", err)
			os.Exit(1)
		}
		projects = st
		cleanup = st.Close
		fmt.Printf(`{"level":"info","msg":"store_initialized","backend":"sqlite","path":"%s"}`+"\n", config.DBPath)
	}

	var auditor api.AuditorInterface
	if config.AuditToken != "" {
		auditor = audit.NewService(config.AuditBaseURL, config.AuditToken, config.AuditModel)
		fmt.Println(`{"level":"info","msg":"auditor_enabled"}`)
	} else {
		fmt.Println(`{"level":"info","msg":"auditor_disabled","reason":"no_token"}`)
	}

	cfg := editor.DefaultConfig()
	cfg.DesignPressureDrop = config.PressureDrop
	session := editor.NewSession(cfg)

	server := api.NewServer(session, projects, auditor, config.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		fmt.Printf(`{"level":"info","msg":"shutdown_initiated","signal":"%s"}`+"\n", sig)
	case err := <-errCh:
		if err != nil {
			fmt.Printf(`{"level":"fatal","msg":"server_failed","error":"%v"}`+"\n", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_stop_server","error":"%v"}`+"\n", err)
	}

	if err := cleanup(); err != nil {
		fmt.Printf(`{"level":"error","msg":"failed_to_close_store","error":"%v"}`+"\n", err)
	} else {
		fmt.Println(`{"level":"info","msg":"store_closed"}`)
	}

	fmt.Println(`{"level":"info","msg":"shutdown_complete"}`)
}
