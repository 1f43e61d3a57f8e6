package session

import "storekeep/internal/api"

// Session is the authenticated store owner's identity and profile,
// held client-side after a successful login.
type Session struct {
	ID          string  `json:"id"`
	StoreName   string  `json:"name"`
	OwnerName   string  `json:"owner"`
	Username    string  `json:"username"`
	Address     string  `json:"address"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Category    string  `json:"category"`
	Active      bool    `json:"isActive"`
	LocationLat float64 `json:"locationLat"`
	LocationLng float64 `json:"locationLng"`
	Token       string  `json:"token,omitempty"`
}

func fromStore(s *api.Store) Session {
	return Session{
		ID:          s.ID,
		StoreName:   s.Name,
		OwnerName:   s.Owner,
		Username:    s.Username,
		Address:     s.Address,
		Phone:       s.Phone,
		Email:       s.Email,
		Category:    s.Category,
		Active:      s.IsActive,
		LocationLat: s.LocationLat,
		LocationLng: s.LocationLng,
		Token:       s.Token,
	}
}

// CheckResult is the outcome of a username existence check.
type CheckResult struct {
	Success   bool
	StoreName string
	OwnerName string
	Error     string
}

// LoginResult is the outcome of a password verification attempt.
type LoginResult struct {
	Success bool
	Session Session
	Error   string
}
