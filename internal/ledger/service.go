package ledger

import (
	"context"                      // Context for store operations
	"ecobloom_api/internal/domain" // Importing domain models
	"errors"                       // Error inspection

	"github.com/shopspring/decimal" // Fixed-point decimal arithmetic
	"gorm.io/gorm"                  // GORM ORM library
)

// maxAmount is the largest value a decimal(10,2) column can hold.
var maxAmount = decimal.RequireFromString("99999999.99")

// DonorRow is one leaderboard entry: an owner with at least one donation
// and their exact donated total.
type DonorRow struct {
	OwnerID   uint            `gorm:"column:owner_id" json:"user_id"`     // Owner's user id
	FirstName string          `json:"first_name"`                         // Owner's first name
	LastName  string          `json:"last_name"`                          // Owner's last name
	Total     decimal.Decimal `gorm:"column:total" json:"total_donated"`  // Exact decimal sum of the owner's donations
}

// Service implements the donation ledger operations over the durable
// store. Every operation takes the owner identity explicitly; there is
// no ambient request state.
type Service struct {
	db *gorm.DB // Donation store handle
}

// NewService creates a ledger service on top of the given store
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ParseAmount validates a donation amount: a non-negative decimal with
// at most 2 fractional digits and at most 10 digits in total.
func ParseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "is required"}
	}
	d, err := decimal.NewFromString(raw) // Parse the decimal string
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if d.Exponent() < -2 {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must have at most 2 decimal places"}
	}
	if d.GreaterThan(maxAmount) {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must have at most 10 digits"}
	}
	return d, nil
}

// RecordDonation validates the amount and inserts one donation row owned
// by ownerID. The store assigns id and created_at. The optional position
// is stored as-is; absent coordinates stay null.
func (s *Service) RecordDonation(ctx context.Context, ownerID uint, amount string, pos *domain.Position) (*domain.Donation, error) {
	amt, err := ParseAmount(amount) // Validate before touching the store
	if err != nil {
		return nil, err
	}
	donation := domain.Donation{UserID: ownerID, Amount: amt}
	donation.SetPosition(pos) // Copy the coordinate triple, if any
	// Single atomic insert; there is no partial-write state to recover
	if err := s.db.WithContext(ctx).Create(&donation).Error; err != nil {
		return nil, err // Store errors propagate unchanged
	}
	return &donation, nil
}

// GetLastDonation returns the owner's most recent donation: greatest
// created_at, ties broken by id descending (ids are store-assigned and
// monotonic, so this is "most recently inserted"). Returns
// ErrNoDonations when the owner has none.
func (s *Service) GetLastDonation(ctx context.Context, ownerID uint) (*domain.Donation, error) {
	var donation domain.Donation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDonations // Zero donations is a normal outcome
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// GetTotal returns the exact decimal sum of the owner's donation
// amounts, or zero when the owner has none. The sum runs on the
// decimal column in the store, never in binary floating point.
func (s *Service) GetTotal(ctx context.Context, ownerID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.WithContext(ctx).
		Model(&domain.Donation{}).
		Where("user_id = ?", ownerID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// ListDonations returns all of the owner's donations, newest first
func (s *Service) ListDonations(ctx context.Context, ownerID uint) ([]domain.Donation, error) {
	var donations []domain.Donation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	return donations, nil
}

// GetLeaderboard groups all donations by owner and returns one row per
// owner holding at least one donation, ordered by total descending.
// Equal totals order by ascending owner id so the ranking is
// deterministic. The scan is unpaginated; results grow with the number
// of distinct donors.
func (s *Service) GetLeaderboard(ctx context.Context) ([]DonorRow, error) {
	rows := []DonorRow{}
	err := s.db.WithContext(ctx).
		Model(&domain.Donation{}).
		Select("donations.user_id AS owner_id, users.first_name, users.last_name, SUM(donations.amount) AS total").
		Joins("JOIN users ON users.id = donations.user_id").
		Group("donations.user_id, users.first_name, users.last_name").
		Order("total DESC, donations.user_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetOwnedPositions collects the coordinate triples of the owner's
// donations in insertion order. A donation with no coordinate at all
// contributes nothing; an empty result is a valid outcome, not an
// error.
func (s *Service) GetOwnedPositions(ctx context.Context, ownerID uint) ([]domain.Position, error) {
	var donations []domain.Donation
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("id ASC").
		Find(&donations).Error
	if err != nil {
		return nil, err
	}
	positions := []domain.Position{}
	for _, d := range donations {
		if p := d.Position(); p != nil {
			positions = append(positions, *p) // One entry per positioned donation
		}
	}
	return positions, nil
}
