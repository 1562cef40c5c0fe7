package domain

// User Model
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`                          // Primary key
	Email     string     `gorm:"unique;not null" json:"email"`                  // Unique email, used for login
	Username  string     `gorm:"unique;not null" json:"username"`               // Unique username
	Password  string     `gorm:"not null" json:"-"`                             // Hashed password, never serialized
	FirstName string     `json:"first_name"`                                    // First name, shown on the leaderboard
	LastName  string     `json:"last_name"`                                     // Last name, shown on the leaderboard
	Role      string     `gorm:"default:user" json:"role"`                      // Role: user or admin
	Donations []Donation `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"` // Deleting a user deletes their donations
}
