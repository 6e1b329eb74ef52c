package gallerydb_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vcostin/gallerydb"
	"github.com/vcostin/gallerydb/query"
)

func TestNotFoundError(t *testing.T) {
	t.Parallel()

	t.Run("Error", func(t *testing.T) {
		err := gallerydb.NewNotFoundError("User")
		assert.Equal(t, "gallerydb: User not found", err.Error())
		assert.Equal(t, "User", err.Entity())
		assert.Nil(t, err.Filter())
	})

	t.Run("WithFilter", func(t *testing.T) {
		err := gallerydb.NewNotFoundErrorWithFilter("User", map[string]any{"email": "a@b.c"})
		assert.Contains(t, err.Error(), "User not found")
		assert.Contains(t, err.Error(), "a@b.c")
		assert.NotNil(t, err.Filter())
	})

	t.Run("Is", func(t *testing.T) {
		err := gallerydb.NewNotFoundError("Gallery")
		assert.True(t, errors.Is(err, gallerydb.ErrNotFound))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := gallerydb.NewNotFoundError("Image")
		assert.True(t, gallerydb.IsNotFound(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, gallerydb.IsNotFound(wrapped))

		assert.True(t, gallerydb.IsNotFound(gallerydb.ErrNotFound))

		assert.False(t, gallerydb.IsNotFound(errors.New("other error")))
		assert.False(t, gallerydb.IsNotFound(nil))
	})
}

func TestUniqueConstraintError(t *testing.T) {
	t.Parallel()

	t.Run("Error", func(t *testing.T) {
		err := gallerydb.NewUniqueConstraintError("User", "users_email_key", errors.New("duplicate"))
		assert.Equal(t, "gallerydb: unique constraint failed on User (users_email_key)", err.Error())
		assert.Equal(t, "User", err.Entity())
		assert.Equal(t, "users_email_key", err.Constraint())
	})

	t.Run("NoConstraintName", func(t *testing.T) {
		err := gallerydb.NewUniqueConstraintError("Tag", "", nil)
		assert.Equal(t, "gallerydb: unique constraint failed on Tag", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("duplicate")
		err := gallerydb.NewUniqueConstraintError("User", "users_email_key", cause)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("IsUniqueConstraintError", func(t *testing.T) {
		err := gallerydb.NewUniqueConstraintError("User", "", nil)
		assert.True(t, gallerydb.IsUniqueConstraintError(err))
		assert.True(t, gallerydb.IsUniqueConstraintError(fmt.Errorf("w: %w", err)))
		assert.False(t, gallerydb.IsUniqueConstraintError(errors.New("other")))
		assert.False(t, gallerydb.IsUniqueConstraintError(nil))
	})
}

func TestForeignKeyError(t *testing.T) {
	t.Parallel()

	t.Run("Error", func(t *testing.T) {
		err := gallerydb.NewForeignKeyError("Account", "accounts_user_id_fkey", nil)
		assert.Equal(t, "gallerydb: foreign key constraint failed on Account (accounts_user_id_fkey)", err.Error())
		assert.Equal(t, "Account", err.Entity())
		assert.Equal(t, "accounts_user_id_fkey", err.Constraint())
	})

	t.Run("IsForeignKeyError", func(t *testing.T) {
		err := gallerydb.NewForeignKeyError("Account", "", nil)
		assert.True(t, gallerydb.IsForeignKeyError(err))
		assert.False(t, gallerydb.IsForeignKeyError(gallerydb.NewUniqueConstraintError("User", "", nil)))
		assert.False(t, gallerydb.IsForeignKeyError(nil))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		assert.True(t, gallerydb.IsConstraintError(gallerydb.NewForeignKeyError("Account", "", nil)))
		assert.True(t, gallerydb.IsConstraintError(gallerydb.NewUniqueConstraintError("User", "", nil)))
		assert.False(t, gallerydb.IsConstraintError(errors.New("other")))
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := query.NewValidationError("User", "nickname", "unknown field in filter")
	assert.True(t, gallerydb.IsValidationError(err))
	assert.True(t, gallerydb.IsValidationError(fmt.Errorf("w: %w", err)))
	assert.False(t, gallerydb.IsValidationError(errors.New("other")))
	assert.False(t, gallerydb.IsValidationError(nil))

	var ve *gallerydb.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "User", ve.Entity)
	assert.Equal(t, "nickname", ve.Field)
}

func TestTxTimeoutError(t *testing.T) {
	t.Parallel()

	t.Run("Error", func(t *testing.T) {
		err := &gallerydb.TxTimeoutError{Phase: "timeout", Err: errors.New("context deadline exceeded")}
		assert.Equal(t, "gallerydb: transaction timeout exceeded: context deadline exceeded", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := &gallerydb.TxTimeoutError{Phase: "maxWait", Err: errors.New("busy")}
		assert.True(t, errors.Is(err, gallerydb.ErrTxTimeout))
	})

	t.Run("IsTxTimeout", func(t *testing.T) {
		err := &gallerydb.TxTimeoutError{Phase: "timeout"}
		assert.True(t, gallerydb.IsTxTimeout(err))
		assert.True(t, gallerydb.IsTxTimeout(fmt.Errorf("w: %w", err)))
		assert.True(t, gallerydb.IsTxTimeout(gallerydb.ErrTxTimeout))
		assert.False(t, gallerydb.IsTxTimeout(errors.New("other")))
		assert.False(t, gallerydb.IsTxTimeout(nil))
	})
}

func TestConnectionError(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := &gallerydb.ConnectionError{Err: cause}
	assert.Equal(t, "gallerydb: connection error: dial tcp: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, gallerydb.IsConnectionError(err))
	assert.False(t, gallerydb.IsConnectionError(cause))
	assert.False(t, gallerydb.IsConnectionError(nil))
}

func TestNotLoadedError(t *testing.T) {
	t.Parallel()

	err := gallerydb.NewNotLoadedError("galleries")
	assert.Equal(t, `gallerydb: relation "galleries" was not loaded`, err.Error())
	assert.True(t, gallerydb.IsNotLoaded(err))
	assert.False(t, gallerydb.IsNotLoaded(errors.New("other")))
	assert.False(t, gallerydb.IsNotLoaded(nil))
}

func TestRollbackError(t *testing.T) {
	t.Parallel()

	cause := errors.New("driver: bad connection")
	err := &gallerydb.RollbackError{Err: cause}
	assert.Equal(t, "gallerydb: rollback failed: driver: bad connection", err.Error())
	assert.ErrorIs(t, err, cause)
}
