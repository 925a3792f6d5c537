// Package user holds the store account as orders and the admin gate see it.
// Registration and sessions are managed elsewhere.
package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	id        int64
	name      string
	email     string
	role      Role
	createdAt time.Time
}

// ReconstructionDTO is for repository use only.
type ReconstructionDTO struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

func RebuildFromDTO(dto ReconstructionDTO) *User {
	role := RoleUser
	if Role(dto.Role) == RoleAdmin {
		role = RoleAdmin
	}
	return &User{
		id:        dto.ID,
		name:      dto.Name,
		email:     dto.Email,
		role:      role,
		createdAt: dto.CreatedAt,
	}
}

func (u *User) ID() int64            { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) Role() Role           { return u.role }
func (u *User) IsAdmin() bool        { return u.role == RoleAdmin }
func (u *User) CreatedAt() time.Time { return u.createdAt }
