// Package repository defines the storage contracts used by the service
// layer together with the MySQL implementation of them.  The sentinel
// errors below are shared by every backend (MySQL, Postgres and the
// in-memory store) so that higher layers can distinguish failure modes
// without knowing which driver produced them.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrTableTaken is returned when an insert or update would give a table
// a second active reservation for the same date and slot.  It is raised
// by the storage constraint, never by an application-side check.
var ErrTableTaken = errors.New("table already reserved for slot")

// ErrEmailExists is returned when creating a user whose email is taken.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows onto ErrNotFound and leaves other errors alone.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
