// Package access gates the table API. Players hold a shared table token,
// the game master holds a pre-shared key; both are optional and the whole
// gate can be switched off for local play.
package access

import "time"

// Role says which side of the screen a caller sits on.
type Role string

const (
	RolePlayer     Role = "player"
	RoleGameMaster Role = "gm"
)

// TableClaims are the verified contents of a table token.
type TableClaims struct {
	Role      Role      `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TableToken is a freshly minted token handed to players.
type TableToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
