package api

import (
	"context"                       // Context for Redis operations
	"ecobloom_api/internal/domain"  // Importing domain models
	"ecobloom_api/internal/ledger"  // Ledger service
	"ecobloom_api/internal/metrics" // Prometheus counters
	"ecobloom_api/internal/utils"   // Utility functions
	"errors"                        // Error inspection
	"net/http"                      // HTTP status codes
	"time"                          // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Fixed-point decimal amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// cacheTTL is how long donation read models stay cached
const cacheTTL = 60 * time.Second

// RecordDonationRequest represents a new donation. The amount travels as
// a decimal string so client-side floats can never smuggle in precision
// the store cannot hold.
type RecordDonationRequest struct {
	Amount string   `json:"amount" binding:"required"` // Donated amount, e.g. "12.34"
	PosX   *float64 `json:"pos_x"`                     // Planted-tree x coordinate, optional
	PosY   *float64 `json:"pos_y"`                     // Planted-tree y coordinate, optional
	PosZ   *float64 `json:"pos_z"`                     // Planted-tree z coordinate, optional
}

// callerID extracts the authenticated owner id placed by the JWT middleware
func callerID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Get userID from context
	if !exists {
		return 0, false // No identity attached to the call
	}
	id, ok := v.(uint) // Assert the stored type
	return id, ok      // Return the owner id
}

// contextRedis extracts the Redis client injected by the route group, if any
func contextRedis(c *gin.Context) *redis.Client {
	if v, exists := c.Get("redisClient"); exists {
		if rdb, ok := v.(*redis.Client); ok {
			return rdb // Injected client
		}
	}
	return nil // No cache wired for this request
}

// invalidateDonationCaches drops the read models a new donation makes stale
func invalidateDonationCaches(c *gin.Context, userID uint) {
	rdb := contextRedis(c) // Redis client from the route group
	if rdb == nil {
		return // Nothing to invalidate
	}
	ctx := context.Background()                                    // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, utils.TotalKey(userID))        // Running total is stale
	_ = utils.DeleteCache(ctx, rdb, utils.LastDonationKey(userID)) // Latest donation is stale
	_ = utils.DeleteCache(ctx, rdb, utils.LeaderboardKey)          // Leaderboard is stale for everyone
}

// RecordDonationHandler inserts one donation owned by the caller
func RecordDonationHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c) // Get the authenticated owner
		// Check if an identity is attached to the call
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req RecordDonationRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			metrics.DonationValidationRejectsTotal.Inc() // Count the rejection
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount: is required"})
			return
		}
		// Build the optional coordinate triple
		var pos *domain.Position
		if req.PosX != nil || req.PosY != nil || req.PosZ != nil {
			pos = &domain.Position{X: req.PosX, Y: req.PosY, Z: req.PosZ}
		}
		// Record the donation through the ledger service
		donation, err := svc.RecordDonation(c.Request.Context(), userID, req.Amount, pos)
		if err != nil {
			var verr *ledger.ValidationError // Validation failures are the caller's fault
			if errors.As(err, &verr) {
				metrics.DonationValidationRejectsTotal.Inc() // Count the rejection
				// Name the offending field; this is not a system fault
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
				return
			}
			// Log store failures with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Owner user ID
				"amount":  req.Amount,  // Requested amount
				"error":   err.Error(), // Error message
			}).Error("Donation insert failed")
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record donation"})
			return
		}
		metrics.DonationsRecordedTotal.Inc() // Count the insert
		// Log the recorded donation
		logrus.WithFields(logrus.Fields{
			"user_id":     userID,                         // Owner user ID
			"donation_id": donation.ID,                    // Store-assigned id
			"amount":      donation.Amount.StringFixed(2), // Recorded amount
		}).Info("Donation recorded")
		invalidateDonationCaches(c, userID) // Drop stale read models
		// Return the created donation
		c.JSON(http.StatusCreated, gin.H{"donation": donation})
	}
}

// ListDonationsHandler returns all of the caller's donations, newest first
func ListDonationsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c) // Get the authenticated owner
		// Check if an identity is attached to the call
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Fetch the owner's donations through the ledger service
		donations, err := svc.ListDonations(c.Request.Context(), userID)
		if err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch donations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"donations": donations}) // Return the list
	}
}

// LastDonationHandler returns the caller's most recent donation. An
// owner with no donations yet gets 204, the explicit "no donation yet"
// signal, not an error.
func LastDonationHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c) // Get the authenticated owner
		// Check if an identity is attached to the call
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()               // Context for Redis operations
		cacheKey := utils.LastDonationKey(userID) // Cache key for the latest donation
		if rdb != nil {
			var cached domain.Donation // Cached donation, if any
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"donation": cached, "cached": true})
				return
			}
		}
		// Fetch the latest donation through the ledger service
		donation, err := svc.GetLastDonation(c.Request.Context(), userID)
		if errors.Is(err, ledger.ErrNoDonations) {
			c.Status(http.StatusNoContent) // No donation yet, a normal outcome
			return
		}
		if err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch donation"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, donation, cacheTTL) // Cache the donation
		}
		c.JSON(http.StatusOK, gin.H{"donation": donation, "cached": false}) // Return it
	}
}

// TotalHandler returns the exact decimal sum of the caller's donations.
// An owner with no donations gets exactly 0.
func TotalHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c) // Get the authenticated owner
		// Check if an identity is attached to the call
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()        // Context for Redis operations
		cacheKey := utils.TotalKey(userID) // Cache key for the running total
		if rdb != nil {
			var cached decimal.Decimal // Cached total, if any
			found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"total": cached, "cached": true})
				return
			}
		}
		// Compute the total through the ledger service
		total, err := svc.GetTotal(c.Request.Context(), userID)
		if err != nil {
			// If the aggregate fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute total"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, total, cacheTTL) // Cache the total
		}
		c.JSON(http.StatusOK, gin.H{"total": total, "cached": false}) // Return it
	}
}

// LeaderboardHandler returns every donor ranked by total donated amount,
// descending, ties by ascending owner id. Owners with zero donations
// never appear. The scan is unpaginated, so response size grows with
// the number of distinct donors; the cache bounds recompute cost.
func LeaderboardHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.LeaderboardRequestsTotal.Inc() // Count the request
		ctx := context.Background()            // Context for Redis operations
		if rdb != nil {
			var cached []ledger.DonorRow // Cached leaderboard, if any
			found, err := utils.GetCache(ctx, rdb, utils.LeaderboardKey, &cached)
			// If found in cache, return it
			if err == nil && found {
				c.JSON(http.StatusOK, gin.H{"donors": cached, "cached": true})
				return
			}
		}
		// Compute the leaderboard through the ledger service
		donors, err := svc.GetLeaderboard(c.Request.Context())
		if err != nil {
			// Log the failure; an aggregate error is a system fault
			logrus.WithFields(logrus.Fields{
				"error": err.Error(), // Error message
			}).Error("Leaderboard query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute leaderboard"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, utils.LeaderboardKey, donors, cacheTTL) // Cache the board
		}
		c.JSON(http.StatusOK, gin.H{"donors": donors, "cached": false}) // Return it
	}
}

// TreePositionsHandler returns the coordinates of every tree the caller's
// donations planted, in recording order
func TreePositionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := callerID(c) // Get the authenticated owner
		// Check if an identity is attached to the call
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Collect the positions through the ledger service
		positions, err := svc.GetOwnedPositions(c.Request.Context(), userID)
		if err != nil {
			// If fetching fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch positions"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"positions": positions}) // Empty list is a valid result
	}
}
