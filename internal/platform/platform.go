// Package platform defines the boundary to the external data-platform
// collaborator that executes the actual copy, role and grant commands.
// The governance engine only issues typed requests through this interface;
// it never builds DDL strings itself.
package platform

import (
	"context"
	"errors"
)

var (
	ErrObjectNotFound = errors.New("platform object not found")
	ErrObjectExists   = errors.New("platform object already exists")
)

// ObjectKind identifies the kind of platform object a command targets.
type ObjectKind string

const (
	ObjectSchema   ObjectKind = "SCHEMA"
	ObjectDatabase ObjectKind = "DATABASE"
	ObjectRole     ObjectKind = "ROLE"
)

// Privilege is a closed set of grantable privileges.
type Privilege string

const (
	PrivilegeRead  Privilege = "READ"
	PrivilegeWrite Privilege = "WRITE"
	// PrivilegeUsage grants membership of one role in another, or of a
	// role in a user.
	PrivilegeUsage Privilege = "USAGE"
)

// GrantTarget is the object a privilege applies to.
type GrantTarget struct {
	Kind ObjectKind
	// Name is a fully-qualified, pre-validated identifier.
	Name string
}

// Grant is a single typed grant request: give Grantee the Privilege on
// the On object. Granting PrivilegeUsage on a ROLE makes Grantee a
// member of that role; Grantee may be a role or a user principal.
type Grant struct {
	Grantee   string
	Privilege Privilege
	On        GrantTarget
}

// DataPlatform is the collaborator that performs resource operations.
// Copy operations may run for minutes and must honor ctx cancellation;
// role and grant operations are expected to be fast.
type DataPlatform interface {
	// CopySchema copies src ("DB.SCHEMA") to dst within the same database.
	CopySchema(ctx context.Context, src, dst string, includeData bool) error
	// CopyDatabase copies the whole database src to dst.
	CopyDatabase(ctx context.Context, src, dst string, includeData bool) error
	CreateAccessRole(ctx context.Context, name string) error
	Grant(ctx context.Context, grant Grant) error
	Drop(ctx context.Context, kind ObjectKind, name string) error
}
