package main

import (
	"fmt"
	"log"
	"os"

	"quitcoach/internal/api"
	"quitcoach/internal/config"
	"quitcoach/internal/db"
	redisdb "quitcoach/internal/redis"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	if err := redisdb.Ping(rdb); err != nil {
		log.Printf("[Main] WARNING: Redis unreachable, sessions will fail: %v", err)
	} else {
		log.Printf("[Main] Redis connected")
	}

	r := api.SetupRouter(cfg, rdb)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
