package iam

import "sort"

// RoleAssignment pairs a role name with the database it was granted on, as
// reported by a user document's roles array.
type RoleAssignment struct {
	Role     string `bson:"role" json:"role"`
	Database string `bson:"db" json:"db"`
}

// Resource identifies what a privilege applies to. Only one of the fields is
// normally populated; the audit discards resource scoping when flattening
// actions, so the type exists to carry the server response faithfully.
type Resource struct {
	Database    string `bson:"db,omitempty" json:"db,omitempty"`
	Collection  string `bson:"collection,omitempty" json:"collection,omitempty"`
	Cluster     bool   `bson:"cluster,omitempty" json:"cluster,omitempty"`
	AnyResource bool   `bson:"anyResource,omitempty" json:"anyResource,omitempty"`
}

// Privilege is a resource/action-set pair as reported by rolesInfo.
type Privilege struct {
	Resource Resource `bson:"resource" json:"resource"`
	Actions  []string `bson:"actions" json:"actions"`
}

// Role is a named bundle of privileges. Built-in roles are platform-defined;
// custom roles are administrator-defined and may inherit from other roles.
type Role struct {
	Name       string           `bson:"role" json:"role"`
	Database   string           `bson:"db" json:"db"`
	Privileges []Privilege      `bson:"privileges,omitempty" json:"privileges,omitempty"`
	Inherited  []RoleAssignment `bson:"inheritedRoles,omitempty" json:"inherited_roles,omitempty"`
	IsBuiltin  bool             `bson:"isBuiltin,omitempty" json:"is_builtin,omitempty"`
}

// Actions flattens every action of every privilege into one set, regardless
// of the resource each privilege is scoped to.
func (r Role) Actions() PermissionSet {
	set := PermissionSet{}
	for _, p := range r.Privileges {
		set.Add(p.Actions...)
	}
	return set
}

// PermissionSet is an unordered, deduplicated set of atomic action names.
// Membership is case-sensitive.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from the given action names.
func NewPermissionSet(actions ...string) PermissionSet {
	set := make(PermissionSet, len(actions))
	set.Add(actions...)
	return set
}

// Add inserts the given action names.
func (s PermissionSet) Add(actions ...string) {
	for _, a := range actions {
		s[a] = struct{}{}
	}
}

// Contains reports whether the action is in the set.
func (s PermissionSet) Contains(action string) bool {
	_, ok := s[action]
	return ok
}

// Union returns a new set holding the members of both sets.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for a := range s {
		out[a] = struct{}{}
	}
	for a := range other {
		out[a] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order. Useful for stable reports;
// the set itself is unordered.
func (s PermissionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// DiffResult partitions an audit outcome. Extra holds effective actions not
// required, Missing holds required actions not granted, Present holds the
// intersection. The three sets are disjoint by construction.
type DiffResult struct {
	Extra   PermissionSet `json:"extra"`
	Missing PermissionSet `json:"missing"`
	Present PermissionSet `json:"present"`
}

// Satisfied reports whether every required permission was granted.
func (d DiffResult) Satisfied() bool {
	return len(d.Missing) == 0
}

// Principal is one authenticated identity reported by the server for the
// current session.
type Principal struct {
	User     string `bson:"user" json:"user"`
	Database string `bson:"db" json:"db"`
}
