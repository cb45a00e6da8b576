package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceLabel(t *testing.T) {
	tests := []struct {
		name string
		ref  *Reference
		want string
	}{
		{"nil reference", nil, ""},
		{"prefers display", &Reference{Display: "Dev Queue", Name: "dev", ID: "1", Key: "DEV"}, "Dev Queue"},
		{"falls back to name", &Reference{Name: "dev", ID: "1", Key: "DEV"}, "dev"},
		{"falls back to id", &Reference{ID: "1", Key: "DEV"}, "1"},
		{"falls back to key", &Reference{Key: "DEV"}, "DEV"},
		{"empty reference", &Reference{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.Label())
		})
	}
}

func TestUserIdent(t *testing.T) {
	assert.Equal(t, "u1", User{UID: "u1", TrackerUID: "t1", ID: "i1"}.Ident())
	assert.Equal(t, "t1", User{TrackerUID: "t1", ID: "i1"}.Ident())
	assert.Equal(t, "i1", User{ID: "i1"}.Ident())
	assert.Empty(t, User{}.Ident())
}

func TestUserIsRobot(t *testing.T) {
	assert.True(t, User{Display: "Deploy Robot"}.IsRobot())
	assert.True(t, User{Display: "ROBOT builder"}.IsRobot())
	assert.True(t, User{Display: "Робот Трекера"}.IsRobot())
	assert.False(t, User{Display: "Robin Banks"}.IsRobot())
	assert.False(t, User{}.IsRobot())
}

func TestAllUsersGroup(t *testing.T) {
	groups := []Group{
		{ID: "1", Name: "devs", Type: 2},
		{ID: "42", Name: "everyone", Type: AllUsersGroupType},
		{ID: "3", Name: "ops", Type: 2},
	}
	found := AllUsersGroup(groups)
	require.NotNil(t, found)
	assert.Equal(t, "42", found.ID)

	assert.Nil(t, AllUsersGroup(nil))
	assert.Nil(t, AllUsersGroup([]Group{{ID: "1", Type: 2}}))
}

func TestParseAccessDenial(t *testing.T) {
	t.Run("full body", func(t *testing.T) {
		body := []byte(`{
			"errorsData": {
				"queue": {"key": "OPS", "display": "Operations", "deleted": false},
				"owner": {"display": "Sam Ortiz", "email": "sam@example.com"},
				"permissionDeniedMessage": "ask the owner"
			},
			"errorMessages": ["no access to OPS"]
		}`)
		denial := parseAccessDenial(body)
		require.NotNil(t, denial)
		assert.Equal(t, "OPS", denial.QueueKey)
		assert.Equal(t, "Operations", denial.QueueName)
		assert.Equal(t, "Sam Ortiz", denial.OwnerName)
		assert.Equal(t, "sam@example.com", denial.OwnerEmail)
		assert.False(t, denial.Deleted)
		assert.Equal(t, "no access to OPS", denial.Message)
	})

	t.Run("permission message fallback", func(t *testing.T) {
		body := []byte(`{"errorsData": {"queue": {"key": "OPS"}, "permissionDeniedMessage": "ask the owner"}}`)
		denial := parseAccessDenial(body)
		require.NotNil(t, denial)
		assert.Equal(t, "ask the owner", denial.Message)
	})

	t.Run("default message", func(t *testing.T) {
		body := []byte(`{"errorsData": {"queue": {"key": "OPS"}}}`)
		denial := parseAccessDenial(body)
		require.NotNil(t, denial)
		assert.Equal(t, "access denied", denial.Message)
	})

	t.Run("unparseable", func(t *testing.T) {
		assert.Nil(t, parseAccessDenial(nil))
		assert.Nil(t, parseAccessDenial([]byte("not json")))
		assert.Nil(t, parseAccessDenial([]byte(`{"unrelated": true}`)))
	})
}
