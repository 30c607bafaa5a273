package worker

import (
	"context"
	"log"
	"strconv"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"aigs/internal/db"
	"aigs/internal/grader"
)

type Server struct {
	DB     *sqlx.DB
	Grader *grader.Grader
}

func (s *Server) mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc("grade_portfolio", s.handleGrade)
	return mux
}

func (s *Server) handleGrade(ctx context.Context, t *asynq.Task) error {
	id, err := strconv.ParseInt(string(t.Payload()), 10, 64)
	if err != nil {
		log.Printf("worker: bad portfolio id %q: %v", t.Payload(), err)
		return nil // malformed task, retrying won't help
	}
	log.Printf("worker: grading portfolio %d", id)

	var p db.Portfolio
	if err := s.DB.GetContext(ctx, &p, `select * from portfolios where id=$1`, id); err != nil {
		return err
	}

	req := grader.GradeRequest{PortfolioID: p.ID}
	if p.DocumentRef.Valid {
		req.FilePath = p.DocumentRef.String
	}
	if p.Rubric.Valid {
		req.Rubric = p.Rubric.String
	}

	// The pipeline never fails: a generative-call failure comes back
	// as grade 0.0 with a structured error report, and that report is
	// persisted like any other.
	res := s.Grader.Grade(ctx, req)

	err = db.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`update portfolios set status='graded', ai_grade=$1, ai_review=$2::jsonb, graded_at=now() where id=$3`,
			res.AIGrade, res.AIReviewReport, id)
		return err
	})
	if err != nil {
		log.Printf("worker: persist grade for portfolio %d: %v", id, err)
		_, _ = s.DB.ExecContext(ctx, `update portfolios set status='failed' where id=$1`, id)
		return err
	}

	log.Printf("worker: portfolio %d graded %.2f", id, res.AIGrade)
	return nil
}

func Run(addr string, dbx *sqlx.DB, g *grader.Grader) error {
	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: addr}, asynq.Config{Concurrency: 5})
	w := &Server{DB: dbx, Grader: g}
	return srv.Run(w.mux())
}
