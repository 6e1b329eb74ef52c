package sql

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ConstraintKind classifies a database constraint violation.
type ConstraintKind int

const (
	// ConstraintNone means the error is not a constraint violation.
	ConstraintNone ConstraintKind = iota
	// ConstraintUnique is a uniqueness violation.
	ConstraintUnique
	// ConstraintForeignKey is a referential-integrity violation.
	ConstraintForeignKey
	// ConstraintCheck is a check-constraint violation.
	ConstraintCheck
)

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

var (
	// "Duplicate entry 'x' for key 'users.users_email_key'"
	mysqlDupKeyRe = regexp.MustCompile(`for key '(?:[^'.]+\.)?([^']+)'`)
	// "... CONSTRAINT `fk_name` FOREIGN KEY ..."
	mysqlFKNameRe = regexp.MustCompile("CONSTRAINT `([^`]+)`")
	// "UNIQUE constraint failed: users.email, users.name"
	// (the FOREIGN KEY form names no columns, so it carries no detail)
	sqliteDetailRe = regexp.MustCompile(`(?:UNIQUE|CHECK) constraint failed: (.+)$`)
)

// DecodeConstraint inspects a storage-engine error and reports whether it is
// a constraint violation, of which kind, and the offending constraint name
// or column list when the driver exposes one.
func DecodeConstraint(err error) (ConstraintKind, string) {
	if err == nil {
		return ConstraintNone, ""
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		switch string(pqe.Code) {
		case pgUniqueViolation:
			return ConstraintUnique, pqe.Constraint
		case pgForeignKeyViolation:
			return ConstraintForeignKey, pqe.Constraint
		case pgCheckViolation:
			return ConstraintCheck, pqe.Constraint
		}
		return ConstraintNone, ""
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) {
		switch mye.Number {
		case mysqlDuplicateEntry:
			if m := mysqlDupKeyRe.FindStringSubmatch(mye.Message); m != nil {
				return ConstraintUnique, m[1]
			}
			return ConstraintUnique, ""
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			if m := mysqlFKNameRe.FindStringSubmatch(mye.Message); m != nil {
				return ConstraintForeignKey, m[1]
			}
			return ConstraintForeignKey, ""
		case mysqlCheckConstraintViolate:
			return ConstraintCheck, ""
		}
		return ConstraintNone, ""
	}
	// SQLite drivers (and unknown postgres wrappers) are matched on the
	// error text, the way most of the ecosystem does it.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "violates unique constraint"):
		return ConstraintUnique, constraintDetail(msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "violates foreign key constraint"):
		return ConstraintForeignKey, constraintDetail(msg)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "violates check constraint"):
		return ConstraintCheck, constraintDetail(msg)
	}
	return ConstraintNone, ""
}

func constraintDetail(msg string) string {
	if m := sqliteDetailRe.FindStringSubmatch(msg); m != nil {
		return strings.TrimSpace(m[1])
	}
	if i := strings.Index(msg, `constraint "`); i >= 0 {
		rest := msg[i+len(`constraint "`):]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			return rest[:j]
		}
	}
	return ""
}

// IsUniqueConstraintError reports if the error resulted from a uniqueness violation.
func IsUniqueConstraintError(err error) bool {
	k, _ := DecodeConstraint(err)
	return k == ConstraintUnique
}

// IsForeignKeyConstraintError reports if the error resulted from a
// referential-integrity violation.
func IsForeignKeyConstraintError(err error) bool {
	k, _ := DecodeConstraint(err)
	return k == ConstraintForeignKey
}

// IsConstraintError reports if the error resulted from any constraint violation.
func IsConstraintError(err error) bool {
	k, _ := DecodeConstraint(err)
	return k != ConstraintNone
}
