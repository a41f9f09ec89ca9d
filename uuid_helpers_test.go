package identity_test

import (
	"testing"

	identity "github.com/krwicher/wil-fasting-group"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHasAccountUUID(t *testing.T) {
	t.Run("uuid subject", func(t *testing.T) {
		session := &identity.SessionObject{
			AccountID: uuid.NewString(),
		}

		assert.True(t, identity.HasAccountUUID(session))
	})

	t.Run("external subject", func(t *testing.T) {
		session := &identity.SessionObject{
			AccountID: "auth0|1234567890",
		}

		assert.False(t, identity.HasAccountUUID(session))
	})

	t.Run("nil session", func(t *testing.T) {
		assert.False(t, identity.HasAccountUUID(nil))
	})
}
