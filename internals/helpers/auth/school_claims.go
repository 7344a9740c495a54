// file: internals/helpers/auth/school_claims.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	helper "github.com/Ehud-Guzman/granite-sms-sub001/internals/helpers"
)

/* ============================================
   Locals keys (the JWT middleware sets these)
   ============================================ */

const (
	LocUserID         = "user_id"          // string UUID
	LocRolesGlobal    = "roles_global"     // []string
	LocSchoolRoles    = "school_roles"     // []SchoolRolesEntry | []map[string]any
	LocActiveSchoolID = "active_school_id" // string UUID
	LocIsOwner        = "is_owner"         // bool | "true"/"false"
	LocWritesLocked   = "writes_locked"    // bool — subscription/entitlement gate
)

type SchoolRolesEntry struct {
	SchoolID uuid.UUID `json:"school_id"`
	Roles    []string  `json:"roles"`
}

/* ============================================
   Claim getters (STRICT: verified locals only)
   ============================================ */

func GetUserIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocUserID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id not found in token")
	}
	switch t := v.(type) {
	case string:
		if id, err := uuid.Parse(strings.TrimSpace(t)); err == nil && id != uuid.Nil {
			return id, nil
		}
	case uuid.UUID:
		if t != uuid.Nil {
			return t, nil
		}
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "user_id in token is invalid")
}

// GetActiveSchoolID resolves the acting tenant. Every ledger call threads the
// returned id explicitly; no ledger code reads the token on its own.
func GetActiveSchoolID(c *fiber.Ctx) (uuid.UUID, error) {
	v := c.Locals(LocActiveSchoolID)
	if v == nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "active school not found in token")
	}
	switch t := v.(type) {
	case string:
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "active school in token is invalid")
		}
		return id, nil
	case uuid.UUID:
		if t != uuid.Nil {
			return t, nil
		}
	}
	return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "active school in token is invalid")
}

func GetRolesGlobal(c *fiber.Ctx) []string {
	out := make([]string, 0)
	switch t := c.Locals(LocRolesGlobal).(type) {
	case []string:
		for _, r := range t {
			if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
				out = append(out, r)
			}
		}
	case []interface{}:
		for _, it := range t {
			if s, ok := it.(string); ok {
				if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func HasGlobalRole(c *fiber.Ctx, role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	for _, r := range GetRolesGlobal(c) {
		if r == role {
			return true
		}
	}
	return false
}

func IsOwner(c *fiber.Ctx) bool {
	if v := c.Locals(LocIsOwner); v != nil {
		if b, ok := v.(bool); ok && b {
			return true
		}
		if s, ok := v.(string); ok && strings.EqualFold(s, "true") {
			return true
		}
	}
	return HasGlobalRole(c, "owner")
}

func parseSchoolRoles(c *fiber.Ctx) ([]SchoolRolesEntry, error) {
	v := c.Locals(LocSchoolRoles)
	if v == nil {
		return nil, fiber.NewError(fiber.StatusUnauthorized, LocSchoolRoles+" not found in token")
	}

	drain := func(m map[string]any) (SchoolRolesEntry, bool) {
		var e SchoolRolesEntry
		if s, ok := m["school_id"].(string); ok {
			if id, err := uuid.Parse(strings.TrimSpace(s)); err == nil {
				e.SchoolID = id
			}
		}
		if rr, ok := m["roles"].([]interface{}); ok {
			for _, it := range rr {
				if rs, ok := it.(string); ok {
					if rs = strings.ToLower(strings.TrimSpace(rs)); rs != "" {
						e.Roles = append(e.Roles, rs)
					}
				}
			}
		}
		return e, e.SchoolID != uuid.Nil && len(e.Roles) > 0
	}

	switch t := v.(type) {
	case []SchoolRolesEntry:
		out := make([]SchoolRolesEntry, 0, len(t))
		for _, e := range t {
			if e.SchoolID != uuid.Nil && len(e.Roles) > 0 {
				out = append(out, e)
			}
		}
		if len(out) == 0 {
			return nil, fiber.NewError(fiber.StatusUnauthorized, LocSchoolRoles+" is empty")
		}
		return out, nil
	case []map[string]any:
		out := make([]SchoolRolesEntry, 0, len(t))
		for _, m := range t {
			if e, ok := drain(m); ok {
				out = append(out, e)
			}
		}
		if len(out) == 0 {
			return nil, fiber.NewError(fiber.StatusUnauthorized, LocSchoolRoles+" is empty/invalid")
		}
		return out, nil
	case []interface{}:
		out := make([]SchoolRolesEntry, 0, len(t))
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				if e, ok := drain(m); ok {
					out = append(out, e)
				}
			}
		}
		if len(out) == 0 {
			return nil, fiber.NewError(fiber.StatusUnauthorized, LocSchoolRoles+" is empty/invalid")
		}
		return out, nil
	}
	return nil, fiber.NewError(fiber.StatusBadRequest, LocSchoolRoles+" has an unsupported format")
}

func HasRoleInSchool(c *fiber.Ctx, schoolID uuid.UUID, role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" || schoolID == uuid.Nil {
		return false
	}
	entries, err := parseSchoolRoles(c)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.SchoolID != schoolID {
			continue
		}
		for _, r := range e.Roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

func isSchoolPresentInToken(c *fiber.Ctx, schoolID uuid.UUID) bool {
	entries, err := parseSchoolRoles(c)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.SchoolID == schoolID {
			return true
		}
	}
	return false
}

func isPrivileged(c *fiber.Ctx) bool {
	return IsOwner(c) || HasGlobalRole(c, "superadmin")
}

/* ============================================
   Composable guard predicates
   ============================================ */

// Guard is one precondition evaluated before a ledger operation runs.
// Guards live outside the ledger's own invariant logic and compose per route.
type Guard func(c *fiber.Ctx, schoolID uuid.UUID) error

// RequireAll evaluates guards in order and stops at the first rejection.
func RequireAll(guards ...Guard) Guard {
	return func(c *fiber.Ctx, schoolID uuid.UUID) error {
		for _, g := range guards {
			if err := g(c, schoolID); err != nil {
				return err
			}
		}
		return nil
	}
}

func requireRoles(roles []string, forbidMessage string) Guard {
	return func(c *fiber.Ctx, schoolID uuid.UUID) error {
		if schoolID == uuid.Nil {
			return fiber.NewError(fiber.StatusBadRequest, "school_id is required")
		}
		if isPrivileged(c) {
			return nil
		}
		if !isSchoolPresentInToken(c, schoolID) {
			return fiber.NewError(fiber.StatusForbidden, "this school is not in your token")
		}
		for _, r := range roles {
			if HasRoleInSchool(c, schoolID, r) {
				return nil
			}
		}
		return fiber.NewError(fiber.StatusForbidden, forbidMessage)
	}
}

// RequireSchoolAdmin: bursar/admin level access for ledger mutations.
var RequireSchoolAdmin = requireRoles(
	[]string{"admin", "bursar"},
	"only an admin or bursar of this school is allowed",
)

// RequireSchoolStaff: read access for reports and listings.
var RequireSchoolStaff = requireRoles(
	[]string{"admin", "bursar", "teacher"},
	"only staff of this school are allowed",
)

// RequireWritesOpen rejects mutations when the subscription/entitlement gate
// (resolved upstream into locals) has closed writes for the tenant.
func RequireWritesOpen(c *fiber.Ctx, schoolID uuid.UUID) error {
	if v := c.Locals(LocWritesLocked); v != nil {
		locked := false
		switch t := v.(type) {
		case bool:
			locked = t
		case string:
			locked = strings.EqualFold(t, "true")
		}
		if locked {
			return helper.NewPolicyError(
				"writes are disabled for this school (subscription limit reached)",
				fiber.Map{"school_id": schoolID.String()},
			)
		}
	}
	return nil
}

// EnsureSchoolAdmin resolves the active tenant and checks admin/bursar access
// in one call. Controllers use the returned id for every query they run.
func EnsureSchoolAdmin(c *fiber.Ctx) (uuid.UUID, error) {
	sid, err := GetActiveSchoolID(c)
	if err != nil {
		return uuid.Nil, err
	}
	if err := RequireSchoolAdmin(c, sid); err != nil {
		return uuid.Nil, err
	}
	return sid, nil
}

func EnsureSchoolStaff(c *fiber.Ctx) (uuid.UUID, error) {
	sid, err := GetActiveSchoolID(c)
	if err != nil {
		return uuid.Nil, err
	}
	if err := RequireSchoolStaff(c, sid); err != nil {
		return uuid.Nil, err
	}
	return sid, nil
}
