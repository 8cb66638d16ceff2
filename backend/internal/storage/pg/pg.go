package pg

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"

	"github.com/itchan-dev/agora/shared/config"
	"github.com/itchan-dev/agora/shared/domain"
	internal_errors "github.com/itchan-dev/agora/shared/errors"
	"github.com/itchan-dev/agora/shared/logger"
	sharedpg "github.com/itchan-dev/agora/shared/storage/pg"
)

//go:embed migrations/init.sql
var initSQL string

type Storage struct {
	db *sql.DB
}

func New(ctx context.Context, cfg config.Pg) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Host, "dbname", cfg.Dbname)
	db, err := sharedpg.Connect(ctx, cfg, sharedpg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}
	logger.Log.Info("connected to postgres")
	return &Storage{db: db}, nil
}

// Migrate applies the schema. Statements are idempotent.
func (s *Storage) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, initSQL); err != nil {
		return internal_errors.Storage("migrate", err)
	}
	return nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return internal_errors.Storage("ping", s.db.PingContext(ctx))
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// storageErr classifies driver errors. Foreign key violations mean the
// referenced row is gone by the time the statement ran.
func storageErr(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case sharedpg.HasCode(err, sharedpg.CodeForeignKeyViolation):
		return internal_errors.NotFound(what)
	case sharedpg.HasCode(err, sharedpg.CodeUniqueViolation):
		return internal_errors.ConflictingWrite(what + " id already taken")
	default:
		return internal_errors.Storage(op, err)
	}
}

// decodeVotes reads a json_object_agg result.
func decodeVotes(raw []byte) (domain.VoteMap, error) {
	votes := domain.VoteMap{}
	if len(raw) == 0 {
		return votes, nil
	}
	if err := json.Unmarshal(raw, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}
