package ledger

import (
	"context"
	"testing"
	"time"

	"ecobloom_api/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newTestService wires the ledger service to a mocked MySQL connection
func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return NewService(gdb), mock
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		want   string
		reason string // expected validation reason fragment, empty for valid input
	}{
		{name: "two decimal places", raw: "12.34", want: "12.34"},
		{name: "integer", raw: "5", want: "5"},
		{name: "zero", raw: "0", want: "0"},
		{name: "column max", raw: "99999999.99", want: "99999999.99"},
		{name: "missing", raw: "", reason: "required"},
		{name: "not a number", raw: "abc", reason: "decimal number"},
		{name: "negative", raw: "-1", reason: "negative"},
		{name: "three decimal places", raw: "10.999", reason: "decimal places"},
		{name: "too many digits", raw: "100000000.00", reason: "10 digits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.raw)
			if tc.reason != "" {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "amount", verr.Field)
				assert.Contains(t, verr.Reason, tc.reason)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s", got)
		})
	}
}

func TestRecordDonation(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `donations`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	x, y, z := 1.5, -2.25, 0.0
	donation, err := svc.RecordDonation(context.Background(), 7, "12.34",
		&domain.Position{X: &x, Y: &y, Z: &z})
	require.NoError(t, err)

	assert.Equal(t, uint(1), donation.ID)
	assert.Equal(t, uint(7), donation.UserID)
	assert.True(t, donation.Amount.Equal(decimal.RequireFromString("12.34")))
	// Coordinates survive bit-for-bit
	require.NotNil(t, donation.Position())
	assert.Equal(t, 1.5, *donation.PosX)
	assert.Equal(t, -2.25, *donation.PosY)
	assert.Equal(t, 0.0, *donation.PosZ)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDonationWithoutPosition(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `donations`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	donation, err := svc.RecordDonation(context.Background(), 7, "5", nil)
	require.NoError(t, err)
	assert.Nil(t, donation.Position())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordDonationInvalidAmountNoInsert(t *testing.T) {
	// No expectations registered: any store access would fail the test
	svc, mock := newTestService(t)

	for _, raw := range []string{"-1", "10.999", "", "1e3x"} {
		_, err := svc.RecordDonation(context.Background(), 7, raw, nil)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "amount %q", raw)
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLastDonationEmpty(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM `donations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "created_at", "pos_x", "pos_y", "pos_z"}))

	_, err := svc.GetLastDonation(context.Background(), 7)
	assert.ErrorIs(t, err, ErrNoDonations)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLastDonationOrdersByRecency(t *testing.T) {
	svc, mock := newTestService(t)

	// The newest row wins: greatest created_at, ties by id descending
	mock.ExpectQuery("SELECT .+ FROM `donations` WHERE user_id = .+ ORDER BY created_at DESC, id DESC").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "amount", "created_at", "pos_x", "pos_y", "pos_z"}).
			AddRow(3, 7, "3.00", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), nil, nil, nil))

	donation, err := svc.GetLastDonation(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, uint(3), donation.ID)
	assert.True(t, donation.Amount.Equal(decimal.RequireFromString("3.00")))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTotalZeroWithoutDonations(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM `+"`donations`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("0"))

	total, err := svc.GetTotal(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTotalExactSum(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM `+"`donations`").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("35.97"))

	total, err := svc.GetTotal(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("35.97")), "got %s", total)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLeaderboard(t *testing.T) {
	svc, mock := newTestService(t)

	// Grouped by owner, ordered by total descending, owner id ascending
	mock.ExpectQuery(`SELECT donations\.user_id AS owner_id, users\.first_name, users\.last_name, SUM\(donations\.amount\) AS total FROM `+"`donations`"+` JOIN users ON users\.id = donations\.user_id .+ORDER BY total DESC, donations\.user_id ASC`).
		WillReturnRows(sqlmock.
			NewRows([]string{"owner_id", "first_name", "last_name", "total"}).
			AddRow(1, "Ana", "Silva", "30.00").
			AddRow(2, "Bruno", "Costa", "5.00"))

	donors, err := svc.GetLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, donors, 2)
	assert.Equal(t, uint(1), donors[0].OwnerID)
	assert.Equal(t, "Ana", donors[0].FirstName)
	assert.True(t, donors[0].Total.Equal(decimal.RequireFromString("30.00")))
	assert.Equal(t, uint(2), donors[1].OwnerID)
	assert.True(t, donors[1].Total.Equal(decimal.RequireFromString("5.00")))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOwnedPositions(t *testing.T) {
	svc, mock := newTestService(t)

	// Three donations in insertion order, the middle one without a position
	mock.ExpectQuery("SELECT .+ FROM `donations` WHERE user_id = .+ ORDER BY id ASC").
		WithArgs(7).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "amount", "created_at", "pos_x", "pos_y", "pos_z"}).
			AddRow(1, 7, "5.00", time.Now(), 1.0, 2.0, 3.0).
			AddRow(2, 7, "7.00", time.Now(), nil, nil, nil).
			AddRow(3, 7, "3.00", time.Now(), 4.0, 5.0, 6.0))

	positions, err := svc.GetOwnedPositions(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, 1.0, *positions[0].X)
	assert.Equal(t, 2.0, *positions[0].Y)
	assert.Equal(t, 3.0, *positions[0].Z)
	assert.Equal(t, 4.0, *positions[1].X)
	assert.Equal(t, 5.0, *positions[1].Y)
	assert.Equal(t, 6.0, *positions[1].Z)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOwnedPositionsEmpty(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM `donations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "amount", "created_at", "pos_x", "pos_y", "pos_z"}))

	positions, err := svc.GetOwnedPositions(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, positions)
	assert.NotNil(t, positions) // Empty, not absent

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDonationsNewestFirst(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("SELECT .+ FROM `donations` WHERE user_id = .+ ORDER BY created_at DESC, id DESC").
		WithArgs(7).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "amount", "created_at", "pos_x", "pos_y", "pos_z"}).
			AddRow(2, 7, "7.00", time.Now(), nil, nil, nil).
			AddRow(1, 7, "5.00", time.Now(), nil, nil, nil))

	donations, err := svc.ListDonations(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, donations, 2)
	assert.Equal(t, uint(2), donations[0].ID)
	assert.Equal(t, uint(1), donations[1].ID)

	require.NoError(t, mock.ExpectationsWereMet())
}
