package main

import (
	"context"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"aigs/internal/db"
	"aigs/internal/extract"
	"aigs/internal/grader"
	"aigs/internal/llm"
	"aigs/internal/regressor"
	"aigs/internal/storage"
	"aigs/internal/worker"
)

func main() {
	// Start services
	dbase := db.MustOpen()
	s3c, err := storage.New(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	g := grader.New(llm.NewClient(), grader.NewCalibrator(regressor.New("")), extract.New(s3c).Text)

	if err := worker.Run(os.Getenv("REDIS_ADDR"), dbase, g); err != nil {
		log.Fatal(err)
	}
}
