// Package token recovers the Cursor session token from state.vscdb and derives
// the session credential the dashboard API expects.
package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/janekbaraniewski/cursorbar/internal/detect"
)

const (
	// AccessTokenKey is the ItemTable key holding the raw access token.
	AccessTokenKey = "cursorAuth/accessToken"

	// LargeFileThreshold is the size from which the database is never read into memory.
	LargeFileThreshold int64 = 1536 << 20

	accessTokenQuery = "SELECT value FROM ItemTable WHERE key = '" + AccessTokenKey + "'"
)

// ErrNotSignedIn means no usable session exists locally.
var ErrNotSignedIn = errors.New("not signed in")

// Strategy is how Extract queries the database.
type Strategy int

const (
	StrategyInMemory Strategy = iota
	StrategyCLI
	// StrategyReadOnly opens the live file so pending WAL frames are seen.
	StrategyReadOnly
)

func (s Strategy) String() string {
	switch s {
	case StrategyInMemory:
		return "in-memory"
	case StrategyCLI:
		return "sqlite3-cli"
	case StrategyReadOnly:
		return "read-only"
	}
	return "unknown"
}

// ChooseStrategy picks how a database file of the given size is queried.
func ChooseStrategy(size int64) Strategy {
	if size < LargeFileThreshold {
		return StrategyInMemory
	}
	return StrategyCLI
}

// Extractor reads the access token out of a state.vscdb file.
type Extractor struct {
	Runner    detect.CommandRunner
	SQLiteCLI string
	Logger    zerolog.Logger

	// threshold overrides LargeFileThreshold in tests.
	threshold int64
}

// NewExtractor returns an Extractor that shells out through runner for large files.
func NewExtractor(runner detect.CommandRunner, logger zerolog.Logger) *Extractor {
	return &Extractor{
		Runner:    runner,
		SQLiteCLI: "sqlite3",
		Logger:    logger.With().Str("component", "token").Logger(),
	}
}

func (e *Extractor) strategyFor(size int64) Strategy {
	if e.threshold > 0 {
		if size < e.threshold {
			return StrategyInMemory
		}
		return StrategyCLI
	}
	return ChooseStrategy(size)
}

// Inspect reports the file size and the strategy Extract would use for path.
func (e *Extractor) Inspect(path string) (int64, Strategy, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, fmt.Errorf("%s: %w", path, ErrNotSignedIn)
		}
		return 0, 0, fmt.Errorf("stat state db: %w", err)
	}
	strategy := e.strategyFor(info.Size())
	if strategy == StrategyInMemory && walPending(path) {
		strategy = StrategyReadOnly
	}
	return info.Size(), strategy, nil
}

// walPending reports whether path has a non-empty -wal sidecar. Frames in it
// are not part of the main file until checkpointed.
func walPending(path string) bool {
	info, err := os.Stat(path + "-wal")
	return err == nil && info.Size() > 0
}

// Extract returns the raw access token stored in the database at path.
// A missing file or a missing row yields ErrNotSignedIn.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	size, strategy, err := e.Inspect(path)
	if err != nil {
		return "", err
	}

	switch strategy {
	case StrategyInMemory, StrategyReadOnly:
		query := e.queryInMemory
		if strategy == StrategyReadOnly {
			query = e.queryReadOnly
		}
		tok, err := query(ctx, path)
		switch {
		case err == nil:
			return tok, nil
		case errors.Is(err, ErrNotSignedIn):
			return "", err
		default:
			e.Logger.Warn().Err(err).Str("path", path).Stringer("strategy", strategy).Msg("query failed, falling back to sqlite3 CLI")
		}
	default:
		e.Logger.Debug().Int64("size", size).Msg("state db above threshold, using sqlite3 CLI")
	}

	tok, err := e.queryCLI(ctx, path)
	if err != nil {
		if errors.Is(err, ErrNotSignedIn) {
			return "", err
		}
		e.Logger.Warn().Err(err).Msg("sqlite3 CLI query failed")
		return "", fmt.Errorf("%w: %v", ErrNotSignedIn, err)
	}
	return tok, nil
}

func (e *Extractor) queryInMemory(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading state db: %w", err)
	}
	// Header bytes 18/19 are 2 in WAL mode; a deserialized copy has no WAL file.
	if len(data) > 19 && data[18] == 2 && data[19] == 2 {
		data[18], data[19] = 1, 1
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return "", fmt.Errorf("opening in-memory db: %w", err)
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn any) error {
		sc, ok := driverConn.(*sqlite3.SQLiteConn)
		if !ok {
			return fmt.Errorf("unexpected driver connection %T", driverConn)
		}
		return sc.Deserialize(data, "main")
	})
	if err != nil {
		return "", fmt.Errorf("loading state db: %w", err)
	}

	return scanToken(ctx, conn)
}

// queryReadOnly opens the file itself so sqlite applies the WAL.
func (e *Extractor) queryReadOnly(ctx context.Context, path string) (string, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return "", fmt.Errorf("opening state db: %w", err)
	}
	defer db.Close()
	return scanToken(ctx, db)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanToken(ctx context.Context, q rowQuerier) (string, error) {
	var value sql.NullString
	err := q.QueryRowContext(ctx, accessTokenQuery).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("no access token row: %w", ErrNotSignedIn)
	}
	if err != nil {
		return "", fmt.Errorf("querying access token: %w", err)
	}

	tok := strings.TrimSpace(value.String)
	if tok == "" {
		return "", fmt.Errorf("empty access token: %w", ErrNotSignedIn)
	}
	return tok, nil
}

func (e *Extractor) queryCLI(ctx context.Context, path string) (string, error) {
	if e.Runner == nil {
		return "", errors.New("no command runner configured")
	}
	cli := e.SQLiteCLI
	if cli == "" {
		cli = "sqlite3"
	}

	out, err := e.Runner.Run(ctx, cli, "-readonly", path, accessTokenQuery+";")
	if err != nil {
		return "", err
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", fmt.Errorf("no access token row: %w", ErrNotSignedIn)
	}
	return tok, nil
}
