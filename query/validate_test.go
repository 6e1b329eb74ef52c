package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcostin/gallerydb/schema"
)

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load([]byte(`
entities:
  - name: User
    fields:
      - {name: id, type: string, unique: true}
      - {name: name, type: string, nullable: true}
      - {name: email, type: string, unique: true}
      - {name: role, type: enum, values: [USER, ADMIN]}
      - {name: createdAt, type: time}
    relations:
      - {name: images, kind: hasMany, target: Image, ref: userId}
  - name: Image
    fields:
      - {name: id, type: string, unique: true}
      - {name: userId, type: string}
      - {name: width, type: int, nullable: true}
      - {name: size, type: float, nullable: true}
    relations:
      - {name: user, kind: belongsTo, target: User, field: userId, onDelete: cascade}
`))
	require.NoError(t, err)
	return s
}

func TestValidateWhere(t *testing.T) {
	t.Parallel()
	s := testSchema(t)
	user, _ := s.Entity("User")

	t.Run("OK", func(t *testing.T) {
		require.NoError(t, ValidateWhere(user, And(
			EQ("email", "a@b.c"),
			Or(Contains("name", "jo"), IsNull("name")),
			In("role", "USER", "ADMIN"),
		)))
	})

	t.Run("NilTree", func(t *testing.T) {
		require.NoError(t, ValidateWhere(user, nil))
	})

	t.Run("UnknownField", func(t *testing.T) {
		err := ValidateWhere(user, EQ("nickname", "x"))
		assert.ErrorIs(t, err, ErrUnknownField)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "User", ve.Entity)
		assert.Equal(t, "nickname", ve.Field)
	})

	t.Run("ContainsOnNonString", func(t *testing.T) {
		err := ValidateWhere(user, Contains("createdAt", "2024"))
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("EnumValueChecked", func(t *testing.T) {
		assert.ErrorIs(t, ValidateWhere(user, EQ("role", "ROOT")), ErrInvalidValue)
		assert.ErrorIs(t, ValidateWhere(user, In("role", "USER", "ROOT")), ErrInvalidValue)
		assert.NoError(t, ValidateWhere(user, NEQ("role", "ADMIN")))
	})
}

func TestValidateOptions(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	tests := []struct {
		name    string
		entity  string
		opts    Options
		wantErr error
	}{
		{
			name:   "Empty",
			entity: "User",
			opts:   Options{},
		},
		{
			name:   "Full",
			entity: "User",
			opts: Options{
				Where:   EQ("email", "a@b.c"),
				OrderBy: []Order{OrderDesc("createdAt")},
				Take:    Take(10),
				Skip:    5,
				Select:  []string{"id", "email"},
			},
		},
		{
			name:    "UnknownEntity",
			entity:  "Post",
			wantErr: ErrUnknownField,
		},
		{
			name:    "SelectWithInclude",
			entity:  "User",
			opts:    Options{Select: []string{"id"}, Include: map[string]*Options{"images": nil}},
			wantErr: ErrConflictingOptions,
		},
		{
			name:    "SelectWithOmit",
			entity:  "User",
			opts:    Options{Select: []string{"id"}, Omit: []string{"email"}},
			wantErr: ErrConflictingOptions,
		},
		{
			name:    "UnknownSelectField",
			entity:  "User",
			opts:    Options{Select: []string{"nickname"}},
			wantErr: ErrUnknownField,
		},
		{
			name:    "UnknownOmitField",
			entity:  "User",
			opts:    Options{Omit: []string{"nickname"}},
			wantErr: ErrUnknownField,
		},
		{
			name:    "UnknownDistinctField",
			entity:  "User",
			opts:    Options{Distinct: []string{"nickname"}},
			wantErr: ErrUnknownField,
		},
		{
			name:    "UnknownOrderByField",
			entity:  "User",
			opts:    Options{OrderBy: []Order{OrderAsc("nickname")}},
			wantErr: ErrUnknownField,
		},
		{
			name:    "NegativeSkip",
			entity:  "User",
			opts:    Options{Skip: -1},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "NegativeTakeWithoutCursor",
			entity:  "User",
			opts:    Options{Take: Take(-3)},
			wantErr: ErrInvalidCursor,
		},
		{
			name:   "NegativeTakeWithCursor",
			entity: "User",
			opts:   Options{Take: Take(-3), Cursor: &Cursor{Field: "id", Value: "u1"}},
		},
		{
			name:    "CursorOnNonUniqueField",
			entity:  "User",
			opts:    Options{Cursor: &Cursor{Field: "name", Value: "x"}},
			wantErr: ErrInvalidCursor,
		},
		{
			name:    "CursorOnUnknownField",
			entity:  "User",
			opts:    Options{Cursor: &Cursor{Field: "nickname", Value: "x"}},
			wantErr: ErrUnknownField,
		},
		{
			name:    "UnknownInclude",
			entity:  "User",
			opts:    Options{Include: map[string]*Options{"posts": nil}},
			wantErr: ErrUnknownField,
		},
		{
			name:   "NestedIncludeValidated",
			entity: "User",
			opts: Options{Include: map[string]*Options{
				"images": {Where: EQ("nickname", "x")},
			}},
			wantErr: ErrUnknownField,
		},
		{
			name:   "ToManyIncludeAcceptsPaging",
			entity: "User",
			opts: Options{Include: map[string]*Options{
				"images": {Take: Take(3), OrderBy: []Order{OrderDesc("id")}},
			}},
		},
		{
			name:   "ToOneIncludeRejectsPaging",
			entity: "Image",
			opts: Options{Include: map[string]*Options{
				"user": {Take: Take(1)},
			}},
			wantErr: ErrConflictingOptions,
		},
		{
			name:   "ToOneIncludeAcceptsSelection",
			entity: "Image",
			opts: Options{Include: map[string]*Options{
				"user": {Select: []string{"id", "email"}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(s, tt.entity, tt.opts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAggregate(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	require.NoError(t, ValidateAggregate(s, "Image", Aggregate{
		Where: EQ("userId", "u1"),
		Count: true,
		Min:   []string{"width"},
		Max:   []string{"width"},
		Avg:   []string{"size"},
		Sum:   []string{"width", "size"},
	}))

	assert.ErrorIs(t, ValidateAggregate(s, "Post", Aggregate{}), ErrUnknownField)
	assert.ErrorIs(t, ValidateAggregate(s, "Image", Aggregate{Min: []string{"nope"}}), ErrUnknownField)
	assert.ErrorIs(t, ValidateAggregate(s, "Image", Aggregate{Where: EQ("nope", 1)}), ErrUnknownField)

	// Min and max work on any orderable field; avg and sum do not.
	assert.NoError(t, ValidateAggregate(s, "User", Aggregate{Min: []string{"createdAt"}}))
	assert.ErrorIs(t, ValidateAggregate(s, "User", Aggregate{Avg: []string{"createdAt"}}), ErrInvalidValue)
	assert.ErrorIs(t, ValidateAggregate(s, "User", Aggregate{Sum: []string{"email"}}), ErrInvalidValue)
}

func TestValidateGroupBy(t *testing.T) {
	t.Parallel()
	s := testSchema(t)

	t.Run("OK", func(t *testing.T) {
		require.NoError(t, ValidateGroupBy(s, "User", GroupBy{
			By:      []string{"role"},
			Where:   NotNull("name"),
			Having:  EQ("role", "ADMIN"),
			OrderBy: []Order{OrderAsc("role")},
			Count:   true,
		}))
	})

	t.Run("EmptyBy", func(t *testing.T) {
		assert.ErrorIs(t, ValidateGroupBy(s, "User", GroupBy{}), ErrInvalidGroupBy)
	})

	t.Run("UnknownByField", func(t *testing.T) {
		assert.ErrorIs(t, ValidateGroupBy(s, "User", GroupBy{By: []string{"nickname"}}), ErrUnknownField)
	})

	t.Run("OrderByOutsideBy", func(t *testing.T) {
		err := ValidateGroupBy(s, "User", GroupBy{
			By:      []string{"role"},
			OrderBy: []Order{OrderAsc("email")},
		})
		assert.ErrorIs(t, err, ErrInvalidGroupBy)
	})

	t.Run("HavingOutsideBy", func(t *testing.T) {
		err := ValidateGroupBy(s, "User", GroupBy{
			By:     []string{"role"},
			Having: GT("createdAt", 0),
		})
		assert.ErrorIs(t, err, ErrInvalidGroupBy)
	})

	t.Run("NegativeSkip", func(t *testing.T) {
		err := ValidateGroupBy(s, "User", GroupBy{By: []string{"role"}, Skip: -1})
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("AggFieldsChecked", func(t *testing.T) {
		err := ValidateGroupBy(s, "Image", GroupBy{By: []string{"userId"}, Avg: []string{"id"}})
		assert.ErrorIs(t, err, ErrInvalidValue)
	})
}

func TestValidationErrorString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "query: User.email: boom", NewValidationError("User", "email", "boom").Error())
	assert.Equal(t, "query: User: boom", NewValidationError("User", "", "boom").Error())
}
