package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newAuthRouter builds a gin router with the public auth routes on top
// of a mocked store
func newAuthRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	r := gin.New()
	r.POST("/auth/register", RegisterHandler(gdb))
	r.POST("/auth/login", LoginHandler(gdb, testSecret))
	return r, mock
}

func TestRegisterRejectsBadInput(t *testing.T) {
	// No store expectations: rejected registrations never insert
	r, mock := newAuthRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"username":"ana","password":"longenough"}`},
		{name: "malformed email", body: `{"email":"nope","username":"ana","password":"longenough"}`},
		{name: "short password", body: `{"email":"ana@example.com","username":"ana","password":"short"}`},
		{name: "bad username", body: `{"email":"ana@example.com","username":"a na!","password":"longenough"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tc.body))
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	r, mock := newAuthRouter(t)

	mock.ExpectQuery("SELECT .+ FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "password", "first_name", "last_name", "role"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ghost@example.com","password":"whatever1"}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
