package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/vcostin/gallerydb/dialect"
)

// CreateTables materializes the model on the connected storage engine:
// one table per entity with its foreign keys, one unique index per
// constraint not already serving as the primary key, and one join table
// per many-to-many relation.
//
// It is a bootstrap helper, not a migration engine: existing tables are
// left untouched (CREATE ... IF NOT EXISTS).
func CreateTables(ctx context.Context, drv dialect.Driver, s *Schema) error {
	d := ddl{dialect: drv.Dialect(), schema: s}
	for _, stmt := range d.statements() {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("schema: create tables: %w", err)
		}
	}
	return nil
}

type ddl struct {
	dialect string
	schema  *Schema
}

func (d ddl) statements() []string {
	var stmts []string
	for _, e := range d.sorted() {
		stmts = append(stmts, d.createTable(e))
		stmts = append(stmts, d.uniqueIndexes(e)...)
	}
	stmts = append(stmts, d.joinTables()...)
	return stmts
}

// sorted returns the entities with every BelongsTo target preceding its owner.
func (d ddl) sorted() []*Entity {
	var (
		out     []*Entity
		visited = make(map[string]bool)
		visit   func(e *Entity)
	)
	visit = func(e *Entity) {
		if visited[e.Name] {
			return
		}
		visited[e.Name] = true
		for _, r := range e.Relations() {
			if r.Kind != BelongsTo || r.Target == e.Name {
				continue
			}
			if t, ok := d.schema.Entity(r.Target); ok {
				visit(t)
			}
		}
		out = append(out, e)
	}
	for _, e := range d.schema.Entities() {
		visit(e)
	}
	return out
}

func (d ddl) quote(ident string) string {
	if d.dialect == dialect.MySQL {
		return "`" + ident + "`"
	}
	return `"` + ident + `"`
}

func (d ddl) createTable(e *Entity) string {
	var defs []string
	pk := d.primaryKey(e)
	for _, f := range e.Fields() {
		def := d.quote(f.Column) + " " + d.columnType(f)
		if !f.Nullable {
			def += " NOT NULL"
		}
		if f.Default == DefaultValue {
			def += " DEFAULT " + d.literal(f)
		}
		defs = append(defs, def)
	}
	cols := make([]string, len(pk.Fields))
	for i, fn := range pk.Fields {
		f, _ := e.Field(fn)
		cols[i] = d.quote(f.Column)
	}
	defs = append(defs, "PRIMARY KEY ("+strings.Join(cols, ", ")+")")
	for _, r := range e.Relations() {
		if r.Kind != BelongsTo {
			continue
		}
		target, _ := d.schema.Entity(r.Target)
		fk, _ := e.Field(r.FKField)
		tid, _ := target.Field(target.ID().Fields[0])
		defs = append(defs, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			d.quote(fk.Column), d.quote(target.Table), d.quote(tid.Column), r.OnDelete,
		))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.quote(e.Table), strings.Join(defs, ", "))
}

// primaryKey prefers a unique "id" field and falls back to the identity
// constraint, so entities without a surrogate id (VerificationToken) get a
// compound primary key.
func (d ddl) primaryKey(e *Entity) Unique {
	if f, ok := e.Field("id"); ok && f.Unique {
		return Unique{Fields: []string{"id"}}
	}
	for _, u := range e.Uniques() {
		if len(u.Fields) > 1 {
			return u
		}
	}
	return e.ID()
}

func (d ddl) uniqueIndexes(e *Entity) []string {
	pk := d.primaryKey(e)
	var stmts []string
	for _, u := range e.Uniques() {
		if strings.Join(u.Fields, ",") == strings.Join(pk.Fields, ",") {
			continue
		}
		cols := make([]string, len(u.Fields))
		for i, fn := range u.Fields {
			f, _ := e.Field(fn)
			cols[i] = d.quote(f.Column)
		}
		stmts = append(stmts, fmt.Sprintf(
			"CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			d.quote(u.Name), d.quote(e.Table), strings.Join(cols, ", "),
		))
	}
	return stmts
}

func (d ddl) joinTables() []string {
	var (
		stmts []string
		seen  = make(map[string]bool)
	)
	for _, e := range d.schema.Entities() {
		for _, r := range e.Relations() {
			if r.Kind != ManyToMany || seen[r.Join.Table] {
				continue
			}
			seen[r.Join.Table] = true
			target, _ := d.schema.Entity(r.Target)
			eid, _ := e.Field(e.ID().Fields[0])
			tid, _ := target.Field(target.ID().Fields[0])
			idType := d.columnType(eid)
			stmts = append(stmts, fmt.Sprintf(
				"CREATE TABLE IF NOT EXISTS %s (%s %s NOT NULL, %s %s NOT NULL, "+
					"PRIMARY KEY (%s, %s), "+
					"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE, "+
					"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE CASCADE)",
				d.quote(r.Join.Table),
				d.quote(r.Join.SourceColumn), idType,
				d.quote(r.Join.TargetColumn), d.columnType(tid),
				d.quote(r.Join.SourceColumn), d.quote(r.Join.TargetColumn),
				d.quote(r.Join.SourceColumn), d.quote(e.Table), d.quote(eid.Column),
				d.quote(r.Join.TargetColumn), d.quote(target.Table), d.quote(tid.Column),
			))
		}
	}
	return stmts
}

func (d ddl) columnType(f *Field) string {
	switch f.Type {
	case TypeString, TypeEnum:
		if d.dialect == dialect.MySQL {
			return "VARCHAR(255)"
		}
		return "TEXT"
	case TypeInt:
		return "INTEGER"
	case TypeFloat:
		if d.dialect == dialect.Postgres {
			return "DOUBLE PRECISION"
		}
		if d.dialect == dialect.MySQL {
			return "DOUBLE"
		}
		return "REAL"
	case TypeBool:
		return "BOOLEAN"
	case TypeTime:
		switch d.dialect {
		case dialect.Postgres:
			return "TIMESTAMPTZ"
		case dialect.MySQL:
			return "DATETIME"
		default:
			return "TIMESTAMP"
		}
	}
	return "TEXT"
}

func (d ddl) literal(f *Field) string {
	switch v := f.DefaultLiteral.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(v)
	}
}
