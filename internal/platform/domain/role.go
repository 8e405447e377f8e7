package domain

import "errors"

// Role is the coarse permission a user holds.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

var ErrUnknownRole = errors.New("domain: unknown role")

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return r, nil
	}
	return "", ErrUnknownRole
}

// SelfAssignable reports whether a user may pick r at registration. Admins are
// created by an operator.
func (r Role) SelfAssignable() bool {
	return r == RoleTeacher || r == RoleStudent
}

// CanPublish reports whether r may upload course documents.
func (r Role) CanPublish() bool {
	return r == RoleTeacher || r == RoleAdmin
}

func (r Role) String() string { return string(r) }
