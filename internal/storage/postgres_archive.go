package storage

import (
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/example/saathigo/internal/models"
)

// PostgresArchive writes confirmed matches to Postgres for later analysis.
// The live matching path never reads from it.
type PostgresArchive struct {
	db *sql.DB
}

func NewPostgresArchive(dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresArchive{db: db}, nil
}

func (p *PostgresArchive) SaveMatch(m models.ConfirmedMatch) error {
	_, err := p.db.Exec(`INSERT INTO matches(id, requester_id, accepter_id, pickup_lat, pickup_lon, drop_lat, drop_lon, matched_at) VALUES($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.RequesterID, m.AccepterID, m.Pickup.Lat, m.Pickup.Lon, m.Drop.Lat, m.Drop.Lon, m.MatchedAt)
	return err
}

func (p *PostgresArchive) Close() error { return p.db.Close() }
