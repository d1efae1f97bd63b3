package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
	ErrRowNotFound = errors.New("db: row not found")
	ErrRowExists   = errors.New("db: row already exists")
)

// Op constants name the failing operation for error context.
const (
	OpPing    = "PING"
	OpGet     = "GET"
	OpSet     = "SET"
	OpIncrBy  = "INCRBY"
	OpExpire  = "EXPIRE"
	OpInsert  = "INSERT products"
	OpSelect  = "SELECT products"
	OpLexical = "SELECT products ILIKE"
	OpNearest = "SELECT products <=>"
	OpUpdate  = "UPDATE products"
	OpMigrate = "MIGRATE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
