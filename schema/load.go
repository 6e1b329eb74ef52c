package schema

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
	"gopkg.in/yaml.v3"
)

// document is the YAML shape of the declarative schema source.
type document struct {
	Entities []entityDoc `yaml:"entities"`
}

type entityDoc struct {
	Name      string        `yaml:"name"`
	Table     string        `yaml:"table"`
	Fields    []fieldDoc    `yaml:"fields"`
	Relations []relationDoc `yaml:"relations"`
	Uniques   [][]string    `yaml:"uniques"`
}

type fieldDoc struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Nullable  bool     `yaml:"nullable"`
	Unique    bool     `yaml:"unique"`
	Values    []string `yaml:"values"`
	Default   any      `yaml:"default"`
	UpdateNow bool     `yaml:"updateNow"`
}

type relationDoc struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Target   string   `yaml:"target"`
	Field    string   `yaml:"field"`
	Ref      string   `yaml:"ref"`
	OnDelete string   `yaml:"onDelete"`
	Join     *joinDoc `yaml:"join"`
}

type joinDoc struct {
	Table        string `yaml:"table"`
	SourceColumn string `yaml:"sourceColumn"`
	TargetColumn string `yaml:"targetColumn"`
}

var fieldTypes = map[string]Type{
	"string": TypeString,
	"int":    TypeInt,
	"float":  TypeFloat,
	"bool":   TypeBool,
	"time":   TypeTime,
	"enum":   TypeEnum,
}

var relKinds = map[string]RelKind{
	"belongsTo":  BelongsTo,
	"hasMany":    HasMany,
	"manyToMany": ManyToMany,
}

var actions = map[string]Action{
	"":         NoAction,
	"noAction": NoAction,
	"restrict": Restrict,
	"cascade":  Cascade,
	"setNull":  SetNull,
}

// Load parses the declarative schema document and returns the validated,
// immutable model. Storage names are derived from the API names: columns
// are underscored, tables are underscored and pluralized.
func Load(data []byte) (*Schema, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}
	s := &Schema{byName: make(map[string]*Entity, len(doc.Entities))}
	for _, ed := range doc.Entities {
		e, err := buildEntity(ed)
		if err != nil {
			return nil, err
		}
		if _, dup := s.byName[e.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate entity %q", e.Name)
		}
		s.entities = append(s.entities, e)
		s.byName[e.Name] = e
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustLoad is like Load but panics on error. Intended for embedded documents
// validated by tests.
func MustLoad(data []byte) *Schema {
	s, err := Load(data)
	if err != nil {
		panic(err)
	}
	return s
}

func buildEntity(ed entityDoc) (*Entity, error) {
	if ed.Name == "" {
		return nil, fmt.Errorf("schema: entity with empty name")
	}
	table := ed.Table
	if table == "" {
		table = inflect.Pluralize(inflect.Underscore(ed.Name))
	}
	e := &Entity{
		Name:            ed.Name,
		Table:           table,
		fieldsByName:    make(map[string]*Field, len(ed.Fields)),
		relationsByName: make(map[string]*Relation, len(ed.Relations)),
	}
	for _, fd := range ed.Fields {
		f, err := buildField(ed.Name, fd)
		if err != nil {
			return nil, err
		}
		if _, dup := e.fieldsByName[f.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate field %s.%s", ed.Name, f.Name)
		}
		e.fields = append(e.fields, f)
		e.fieldsByName[f.Name] = f
		if f.Unique {
			e.uniques = append(e.uniques, Unique{
				Name:   uniqueName(table, []string{f.Column}),
				Fields: []string{f.Name},
			})
		}
	}
	for _, fields := range ed.Uniques {
		cols := make([]string, len(fields))
		for i, fn := range fields {
			cols[i] = inflect.Underscore(fn)
		}
		e.uniques = append(e.uniques, Unique{
			Name:   uniqueName(table, cols),
			Fields: fields,
		})
	}
	for _, rd := range ed.Relations {
		kind, ok := relKinds[rd.Kind]
		if !ok {
			return nil, fmt.Errorf("schema: relation %s.%s has unknown kind %q", ed.Name, rd.Name, rd.Kind)
		}
		action, ok := actions[rd.OnDelete]
		if !ok {
			return nil, fmt.Errorf("schema: relation %s.%s has unknown onDelete %q", ed.Name, rd.Name, rd.OnDelete)
		}
		r := &Relation{
			Name:     rd.Name,
			Kind:     kind,
			Target:   rd.Target,
			FKField:  rd.Field,
			RefField: rd.Ref,
			OnDelete: action,
		}
		if rd.Join != nil {
			r.Join = &JoinTable{
				Table:        rd.Join.Table,
				SourceColumn: rd.Join.SourceColumn,
				TargetColumn: rd.Join.TargetColumn,
			}
		}
		if _, dup := e.relationsByName[r.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate relation %s.%s", ed.Name, r.Name)
		}
		e.relations = append(e.relations, r)
		e.relationsByName[r.Name] = r
	}
	return e, nil
}

func buildField(entity string, fd fieldDoc) (*Field, error) {
	t, ok := fieldTypes[fd.Type]
	if !ok {
		return nil, fmt.Errorf("schema: field %s.%s has unknown type %q", entity, fd.Name, fd.Type)
	}
	f := &Field{
		Name:      fd.Name,
		Column:    inflect.Underscore(fd.Name),
		Type:      t,
		Nullable:  fd.Nullable,
		Unique:    fd.Unique,
		Enum:      fd.Values,
		UpdateNow: fd.UpdateNow,
	}
	if fd.Default != nil {
		switch {
		case t == TypeString && fd.Default == "uuid":
			f.Default = DefaultUUID
		case t == TypeTime && fd.Default == "now":
			f.Default = DefaultNow
		default:
			f.Default = DefaultValue
			f.DefaultLiteral = fd.Default
		}
	}
	return f, nil
}

// uniqueName derives the constraint identifier reported on violations,
// following the postgres "<table>_<columns>_key" convention.
func uniqueName(table string, columns []string) string {
	return table + "_" + strings.Join(columns, "_") + "_key"
}
