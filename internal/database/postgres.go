package database

import (
	"database/sql"
)

type PgTutorMatchRepository struct {
	conn *sql.DB
}

func NewPgTutorMatchRepository(dsn string) (*PgTutorMatchRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgTutorMatchRepository{conn: db}, nil
}

func (db *PgTutorMatchRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgTutorMatchRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
