// Package schema holds the static description of the entities the client
// operates on: fields with their semantic types and nullability, relations
// with their cardinality and foreign keys, and uniqueness constraints.
//
// The model is loaded once at process start from a declarative YAML document
// and is immutable afterwards; every lookup is safe for concurrent use.
package schema

import (
	"fmt"
)

// Type is the semantic scalar type of a field.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
	TypeEnum
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "int",
	TypeFloat:   "float",
	TypeBool:    "bool",
	TypeTime:    "time",
	TypeEnum:    "enum",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// DefaultKind describes how a field value is defaulted on create.
type DefaultKind uint8

const (
	// DefaultNone means the field has no default.
	DefaultNone DefaultKind = iota
	// DefaultUUID generates a new UUID string.
	DefaultUUID
	// DefaultNow uses the current time.
	DefaultNow
	// DefaultValue uses a literal value from the schema document.
	DefaultValue
)

// Field describes one scalar field of an entity.
type Field struct {
	// Name is the API-facing field name (e.g. "providerAccountId").
	Name string
	// Column is the storage column name (e.g. "provider_account_id").
	Column string
	Type   Type
	// Nullable fields map to nullable columns and pointer Go fields.
	Nullable bool
	// Unique fields carry a single-column unique constraint.
	Unique bool
	// Enum holds the allowed values for TypeEnum fields.
	Enum []string
	// Default and DefaultLiteral describe the create-time default.
	Default        DefaultKind
	DefaultLiteral any
	// UpdateNow fields are bumped to the current time on every update.
	UpdateNow bool
}

// ValidEnum reports whether v is one of the allowed enum values.
func (f *Field) ValidEnum(v string) bool {
	for _, e := range f.Enum {
		if e == v {
			return true
		}
	}
	return false
}

// RelKind is the cardinality of a relation as seen from the owning entity.
type RelKind uint8

const (
	// BelongsTo is a to-one relation whose foreign key lives on this entity.
	BelongsTo RelKind = iota + 1
	// HasMany is a to-many relation whose foreign key lives on the target.
	HasMany
	// ManyToMany is a to-many relation through a join table.
	ManyToMany
)

func (k RelKind) String() string {
	switch k {
	case BelongsTo:
		return "belongsTo"
	case HasMany:
		return "hasMany"
	case ManyToMany:
		return "manyToMany"
	}
	return "invalid"
}

// ToMany reports whether the relation resolves to a list of targets.
func (k RelKind) ToMany() bool { return k != BelongsTo }

// Action is a referential action applied by the storage engine on delete.
type Action string

const (
	NoAction Action = "NO ACTION"
	Restrict Action = "RESTRICT"
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
)

// JoinTable describes the join table realizing a many-to-many relation.
type JoinTable struct {
	Table        string
	SourceColumn string
	TargetColumn string
}

// Relation describes one relation of an entity.
type Relation struct {
	// Name is the API-facing relation name (e.g. "inGalleries").
	Name string
	Kind RelKind
	// Target is the name of the related entity.
	Target string
	// FKField is the foreign-key field on this entity (BelongsTo only).
	FKField string
	// RefField is the foreign-key field on the target entity (HasMany only).
	RefField string
	// Join describes the join table (ManyToMany only).
	Join *JoinTable
	// OnDelete is the referential action of the foreign key (BelongsTo only).
	OnDelete Action
}

// Unique is a (possibly compound) uniqueness constraint.
type Unique struct {
	// Name is the constraint identifier reported on violations.
	Name string
	// Fields are the API-facing field names covered by the constraint.
	Fields []string
}

// Entity describes one record type and its storage table.
type Entity struct {
	Name  string
	Table string

	fields    []*Field
	relations []*Relation
	uniques   []Unique

	fieldsByName    map[string]*Field
	relationsByName map[string]*Relation
}

// Fields returns the entity fields in declaration order.
func (e *Entity) Fields() []*Field { return e.fields }

// Relations returns the entity relations in declaration order.
func (e *Entity) Relations() []*Relation { return e.relations }

// Uniques returns all uniqueness constraints, single-column ones included.
func (e *Entity) Uniques() []Unique { return e.uniques }

// Field returns the field with the given API name.
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.fieldsByName[name]
	return f, ok
}

// Relation returns the relation with the given API name.
func (e *Entity) Relation(name string) (*Relation, bool) {
	r, ok := e.relationsByName[name]
	return r, ok
}

// Columns returns the storage columns in field declaration order.
func (e *Entity) Columns() []string {
	cols := make([]string, len(e.fields))
	for i, f := range e.fields {
		cols[i] = f.Column
	}
	return cols
}

// ID returns the identity constraint of the entity: the first single-field
// unique constraint if one exists, otherwise the first compound one.
func (e *Entity) ID() Unique {
	for _, u := range e.uniques {
		if len(u.Fields) == 1 {
			return u
		}
	}
	return e.uniques[0]
}

// Schema is the immutable model of all entities.
type Schema struct {
	entities []*Entity
	byName   map[string]*Entity
}

// Entities returns all entities in declaration order.
func (s *Schema) Entities() []*Entity { return s.entities }

// Entity returns the entity with the given name.
func (s *Schema) Entity(name string) (*Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// FieldsOf returns the fields of the named entity.
func (s *Schema) FieldsOf(entity string) ([]*Field, error) {
	e, ok := s.byName[entity]
	if !ok {
		return nil, fmt.Errorf("schema: unknown entity %q", entity)
	}
	return e.fields, nil
}

// RelationsOf returns the relations of the named entity.
func (s *Schema) RelationsOf(entity string) ([]*Relation, error) {
	e, ok := s.byName[entity]
	if !ok {
		return nil, fmt.Errorf("schema: unknown entity %q", entity)
	}
	return e.relations, nil
}

// UniqueConstraintsOf returns the uniqueness constraints of the named entity.
func (s *Schema) UniqueConstraintsOf(entity string) ([]Unique, error) {
	e, ok := s.byName[entity]
	if !ok {
		return nil, fmt.Errorf("schema: unknown entity %q", entity)
	}
	return e.uniques, nil
}

// validate checks the referential closure of the model.
func (s *Schema) validate() error {
	for _, e := range s.entities {
		if len(e.uniques) == 0 {
			return fmt.Errorf("schema: entity %s has no unique constraint to identify rows", e.Name)
		}
		for _, r := range e.relations {
			target, ok := s.byName[r.Target]
			if !ok {
				return fmt.Errorf("schema: relation %s.%s references unknown entity %q", e.Name, r.Name, r.Target)
			}
			switch r.Kind {
			case BelongsTo:
				if _, ok := e.Field(r.FKField); !ok {
					return fmt.Errorf("schema: relation %s.%s names unknown foreign-key field %q", e.Name, r.Name, r.FKField)
				}
			case HasMany:
				if _, ok := target.Field(r.RefField); !ok {
					return fmt.Errorf("schema: relation %s.%s names unknown field %q on %s", e.Name, r.Name, r.RefField, r.Target)
				}
			case ManyToMany:
				if r.Join == nil {
					return fmt.Errorf("schema: relation %s.%s is many-to-many but has no join table", e.Name, r.Name)
				}
			default:
				return fmt.Errorf("schema: relation %s.%s has invalid kind", e.Name, r.Name)
			}
		}
		for _, u := range e.uniques {
			for _, fn := range u.Fields {
				if _, ok := e.Field(fn); !ok {
					return fmt.Errorf("schema: unique constraint %s on %s names unknown field %q", u.Name, e.Name, fn)
				}
			}
		}
		for _, f := range e.fields {
			if f.Type == TypeEnum && len(f.Enum) == 0 {
				return fmt.Errorf("schema: enum field %s.%s has no values", e.Name, f.Name)
			}
			if f.Default == DefaultValue && f.Type == TypeEnum {
				if v, ok := f.DefaultLiteral.(string); !ok || !f.ValidEnum(v) {
					return fmt.Errorf("schema: default of enum field %s.%s is not an allowed value", e.Name, f.Name)
				}
			}
		}
	}
	return nil
}
