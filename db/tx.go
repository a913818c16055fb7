package db

import (
	"context"
	"database/sql"

	"github.com/0xPolygon/claimdeployer/log"
)

// Tx wraps sql.Tx and runs the registered callbacks once the outcome is known
type Tx struct {
	*sql.Tx
	rollbackCallbacks []func()
	commitCallbacks   []func()
}

func NewTx(ctx context.Context, db *sql.DB) (*Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Tx: tx,
	}, nil
}

func (s *Tx) AddRollbackCallback(cb func()) {
	s.rollbackCallbacks = append(s.rollbackCallbacks, cb)
}

func (s *Tx) AddCommitCallback(cb func()) {
	s.commitCallbacks = append(s.commitCallbacks, cb)
}

func (s *Tx) Commit() error {
	if err := s.Tx.Commit(); err != nil {
		return err
	}
	for _, cb := range s.commitCallbacks {
		cb()
	}
	return nil
}

func (s *Tx) Rollback() error {
	if err := s.Tx.Rollback(); err != nil {
		return err
	}
	for _, cb := range s.rollbackCallbacks {
		cb()
	}
	return nil
}

// RollbackIfErr rolls the tx back when *err is set. Meant to be deferred right after NewTx.
func (s *Tx) RollbackIfErr(logger *log.Logger, err *error) {
	if *err == nil {
		return
	}
	if errRllbck := s.Rollback(); errRllbck != nil {
		logger.Errorf("error while rolling back tx: %v", errRllbck)
	}
}
