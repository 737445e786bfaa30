// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

// Role is the permission tier of a user.
type Role int

// Role tiers, in ascending order of privilege.
const (
	RoleMember Role = iota
	RoleAdmin
	RoleOwner
)

// String implements the fmt.Stringer interface.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	default:
		return "member"
	}
}

// AuthState is the authorization lifecycle stage of a container.
type AuthState int

// Authorization states. A container is in exactly one state at all times;
// one never seen before is Unauthorized.
const (
	Unauthorized AuthState = iota
	Pending
	Allowed
)

// String implements the fmt.Stringer interface.
func (s AuthState) String() string {
	switch s {
	case Allowed:
		return "allowed"
	case Pending:
		return "pending"
	default:
		return "unauthorized"
	}
}

// roleOf classifies a user into a role tier. The owner always resolves to
// RoleOwner, regardless of the contents of the admin set. It is a total
// function over any string input.
func (b *Bot) roleOf(userID string) Role {
	if userID != "" && userID == b.Owner {
		return RoleOwner
	}
	if b.State.IsAdmin(userID) {
		return RoleAdmin
	}
	return RoleMember
}
