package main

import (
	"context"
	"log"
	"os"

	"github.com/hibiken/asynq"

	"aigs/internal/db"
	"aigs/internal/extract"
	"aigs/internal/grader"
	httpSrv "aigs/internal/http"
	"aigs/internal/llm"
	"aigs/internal/migrations"
	"aigs/internal/regressor"
	"aigs/internal/storage"
)

func main() {
	// Run embedded migrations (idempotent)
	migrations.Run()

	// Start services
	dbase := db.MustOpen()
	s3c, err := storage.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	asq := asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("REDIS_ADDR")})

	reg := regressor.New("")
	g := grader.New(llm.NewClient(), grader.NewCalibrator(reg), extract.New(s3c).Text)

	srv := httpSrv.NewServer(dbase, s3c, asq, g, reg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
