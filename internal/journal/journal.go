// Package journal keeps an optional on-disk record of authentication
// events. The proxy itself is stateless; the journal exists so an
// operator can answer "who logged in, and who keeps failing" after
// the fact.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// event kinds
const (
	LoginOK        = "login"
	LoginDenied    = "login-denied"
	LoginThrottled = "login-throttled"
	Logout         = "logout"
)

type (
	Sink interface {
		Record(ctx context.Context, kind, login, remote, detail string) error
		Close() error
	}

	DB struct {
		db *sql.DB
	}

	discard struct{}
)

// Discard is the sink used when no journal is configured.
func Discard() Sink {
	return discard{}
}

func (discard) Record(context.Context, string, string, string, string) error { return nil }
func (discard) Close() error                                                { return nil }

func Open(ctx context.Context, path string) (*DB, error) {
	connstr := fmt.Sprintf("file:%v?_journal=wal&mode=rwc", path)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open journal %v, cause %v", path, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to ping journal %v, cause %v", path, err)
	}
	j := &DB{db: conn}
	err = j.init(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return j, nil
}

func (j *DB) init(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `create table if not exists auth_events(
		event_id integer primary key autoincrement,
		at timestamp not null default current_timestamp,
		kind text not null,
		login text not null,
		remote text not null,
		detail text not null)`)
	if err != nil {
		return fmt.Errorf("unable to create auth_events table, cause %w", err)
	}
	return nil
}

func (j *DB) Record(ctx context.Context, kind, login, remote, detail string) error {
	_, err := j.db.ExecContext(ctx,
		`insert into auth_events (kind, login, remote, detail) values (?, ?, ?, ?)`,
		kind, login, remote, detail)
	if err != nil {
		return fmt.Errorf("unable to record %v event, cause %w", kind, err)
	}
	return nil
}

// CountEvents reports how many events of the given kind were
// journaled so far.
func (j *DB) CountEvents(ctx context.Context, kind string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx,
		`select count(*) from auth_events where kind = ?`, kind).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("unable to count %v events, cause %w", kind, err)
	}
	return count, nil
}

func (j *DB) Close() error {
	return j.db.Close()
}
