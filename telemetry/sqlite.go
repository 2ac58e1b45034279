package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ajanata/rtc/ds3231"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS readings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	unix INTEGER NOT NULL,
	time TEXT NOT NULL,
	temperature INTEGER NOT NULL,
	oscillator_stopped INTEGER NOT NULL
)`

// SQLiteStore keeps readings in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path. ":memory:" keeps the
// readings in memory.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: opening %s: %w", path, err)
	}
	// one connection, so that :memory: is a single database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Publish(ctx context.Context, r Reading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (unix, time, temperature, oscillator_stopped) VALUES (?, ?, ?, ?)`,
		r.Unix, r.Time, int64(r.Temperature), r.OscillatorStopped)
	return err
}

// Latest returns up to n readings, newest first.
func (s *SQLiteStore) Latest(ctx context.Context, n int) ([]Reading, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unix, time, temperature, oscillator_stopped FROM readings ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var (
			r    Reading
			temp int64
		)
		if err := rows.Scan(&r.Unix, &r.Time, &temp, &r.OscillatorStopped); err != nil {
			return nil, err
		}
		r.Temperature = ds3231.Temperature(temp)
		r.TemperatureC = r.Temperature.Celsius()
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
