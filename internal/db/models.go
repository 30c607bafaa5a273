package db

import (
	"database/sql"
	"time"
)

type Portfolio struct {
	ID              int64           `db:"id"`
	CreatedAt       time.Time       `db:"created_at"`
	Status          string          `db:"status"`
	DocumentRef     sql.NullString  `db:"document_ref"`
	Rubric          sql.NullString  `db:"rubric"`
	UploadTokenHash string          `db:"upload_token_hash"`
	AIGrade         sql.NullFloat64 `db:"ai_grade"`
	AIReview        []byte          `db:"ai_review"`
	GradedAt        sql.NullTime    `db:"graded_at"`
}
