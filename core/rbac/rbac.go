// Package rbac holds the static role to page permission table.
package rbac

import "strings"

const (
	RoleAdmin      = "ADMIN"
	RoleAslab      = "ASLAB"
	RoleAsprakKoor = "ASPRAK_KOOR"
)

var (
	AllRoles = []string{RoleAdmin, RoleAslab, RoleAsprakKoor}

	// Staff may manage the catalogue, schedules and assignments.
	Staff = []string{RoleAdmin, RoleAslab}

	roleAllowedPaths = map[string][]string{
		RoleAdmin: {
			"/", "/praktikum", "/mata-kuliah", "/asprak", "/plotting", "/jadwal", "/pelanggaran",
			"/manajemen-akun", "/audit-logs", "/panduan", "/pengaturan", "/database",
		},
		RoleAslab: {
			"/", "/praktikum", "/mata-kuliah", "/asprak", "/plotting", "/jadwal", "/pelanggaran",
			"/panduan", "/database", "/audit-logs",
		},
		RoleAsprakKoor: {"/pelanggaran", "/panduan"},
	}

	publicPaths = []string{"/login", "/auth", "/maintenance"}

	defaultRedirects = map[string]string{
		RoleAdmin:      "/",
		RoleAslab:      "/",
		RoleAsprakKoor: "/pelanggaran",
	}
)

func IsValidRole(role string) bool {
	_, ok := roleAllowedPaths[role]
	return ok
}

// AllowedPaths returns a copy of the pages the role may open.
func AllowedPaths(role string) []string {
	paths := roleAllowedPaths[role]
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}

// DefaultRedirect is the landing page of a role, "/login" for unknown roles.
func DefaultRedirect(role string) string {
	if r, ok := defaultRedirects[role]; ok {
		return r
	}
	return "/login"
}

// matchPath matches `p` against `entry`. "/" only matches itself.
func matchPath(p, entry string) bool {
	if entry == "/" {
		return p == "/"
	}
	return p == entry || strings.HasPrefix(p, entry+"/")
}

func HasAccess(role, p string) bool {
	for _, entry := range roleAllowedPaths[role] {
		if matchPath(p, entry) {
			return true
		}
	}
	return false
}

func IsPublicPath(p string) bool {
	for _, entry := range publicPaths {
		if matchPath(p, entry) {
			return true
		}
	}
	return false
}

// HasRole reports whether role is one of roles. No roles means anyone.
func HasRole(role string, roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
