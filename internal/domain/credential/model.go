package credential

import (
	"time"
)

// Token is the stored Xero OAuth2 credential set. Single-tenant: there is at
// most one row, replaced on each new connection.
type Token struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	TenantID     string    `json:"tenant_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}
