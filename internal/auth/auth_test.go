package auth

import (
	"testing"
	"time"

	"todo-tracker-api/internal/models"
	"todo-tracker-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestSessionLifecycle(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	userID := uint(7)
	discordID := "d-7"
	session, err := CreateSession(db, &userID, &discordID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	found, err := FindSession(db, session.Token)
	require.NoError(t, err)
	require.NotNil(t, found.UserID)
	require.Equal(t, userID, *found.UserID)

	require.NoError(t, DeleteSession(db, session.Token))
	_, err = FindSession(db, session.Token)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindSession_NeverReturnsExpired(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	session, err := CreateSession(db, nil, nil, time.Hour)
	require.NoError(t, err)

	// jump two hours forward
	orig := now
	now = func() time.Time { return orig().Add(2 * time.Hour) }
	defer func() { now = orig }()

	_, err = FindSession(db, session.Token)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPurgeExpired(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	expired, err := CreateSession(db, nil, nil, time.Minute)
	require.NoError(t, err)
	alive, err := CreateSession(db, nil, nil, 24*time.Hour)
	require.NoError(t, err)
	require.NoError(t, RecordAttempt(db, "10.0.0.1", false))

	orig := now
	now = func() time.Time { return orig().Add(2 * time.Hour) }
	defer func() { now = orig }()

	require.NoError(t, PurgeExpired(db, time.Hour))

	var sessions int64
	db.Model(&models.Session{}).Count(&sessions)
	require.EqualValues(t, 1, sessions)
	_, err = FindSession(db, alive.Token)
	require.NoError(t, err)

	var count int64
	db.Model(&models.Session{}).Where("token = ?", expired.Token).Count(&count)
	require.EqualValues(t, 0, count)

	var attempts int64
	db.Model(&models.LoginAttempt{}).Count(&attempts)
	require.EqualValues(t, 0, attempts)
}

func TestRecentFailures_PerAddress(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, RecordAttempt(db, "10.0.0.1", false))
	}
	// successes never reduce the count
	require.NoError(t, RecordAttempt(db, "10.0.0.1", true))
	require.NoError(t, RecordAttempt(db, "10.0.0.2", false))

	failures, err := RecentFailures(db, "10.0.0.1", 15*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 5, failures)

	failures, err = RecentFailures(db, "10.0.0.2", 15*time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, failures)
}

func TestStateToken_RoundTrip(t *testing.T) {
	token, err := NewStateToken("secret", time.Minute)
	require.NoError(t, err)
	require.NoError(t, ValidateStateToken("secret", token))

	require.Error(t, ValidateStateToken("other-secret", token))
	require.Error(t, ValidateStateToken("secret", "not-a-token"))
}

func TestStateToken_Expired(t *testing.T) {
	token, err := NewStateToken("secret", -time.Minute)
	require.NoError(t, err)
	require.Error(t, ValidateStateToken("secret", token))
}

func TestVerifyAdminPassword(t *testing.T) {
	require.True(t, VerifyAdminPassword("hunter2", "hunter2", ""))
	require.False(t, VerifyAdminPassword("wrong", "hunter2", ""))
	require.False(t, VerifyAdminPassword("anything", "", ""))

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	require.True(t, VerifyAdminPassword("hunter2", "", string(hash)))
	require.False(t, VerifyAdminPassword("wrong", "", string(hash)))

	// hash wins over plaintext when both are set
	require.False(t, VerifyAdminPassword("plain-only", "plain-only", string(hash)))
}
