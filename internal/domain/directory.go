package domain

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrEmployeeNotFound = errors.New("employee not found")

// Employee is a shop-floor worker or supervisor. Employees carry both an
// internal ID and a human-readable badge code; callers may present either.
type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employeeId"`
	Code       string             `bson:"code"`
	Name       string             `bson:"name"`
	Role       string             `bson:"role"`
	Active     bool               `bson:"active"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// EmployeeDirectory resolves employee identities. Resolve must accept the
// internal employee ID first and fall back to the badge code.
type EmployeeDirectory interface {
	Resolve(ctx context.Context, idOrCode string) (*Employee, error)
}

// Capability names an action that may require elevated rights
type Capability string

const (
	// CapabilityExecuteAnyStep lets an employee act on steps they are not
	// assigned to.
	CapabilityExecuteAnyStep Capability = "execute_any_step"
	// CapabilityManageJobs covers split, hold and resume.
	CapabilityManageJobs Capability = "manage_jobs"
)

// RoleSupervisor holds every capability
const RoleSupervisor = "production_supervisor"

// Authorizer decides whether an employee holds a capability
type Authorizer interface {
	Can(employee *Employee, capability Capability) bool
}

// RoleAuthorizer grants capabilities by role name. The supervisor role
// bypasses all checks.
type RoleAuthorizer struct {
	grants map[string][]Capability
}

// NewRoleAuthorizer builds the default role grants
func NewRoleAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{
		grants: map[string][]Capability{
			"production_manager": {CapabilityExecuteAnyStep, CapabilityManageJobs},
			"quality_inspector":  {CapabilityExecuteAnyStep},
		},
	}
}

func (a *RoleAuthorizer) Can(employee *Employee, capability Capability) bool {
	if employee == nil {
		return false
	}
	if employee.Role == RoleSupervisor {
		return true
	}
	for _, c := range a.grants[employee.Role] {
		if c == capability {
			return true
		}
	}
	return false
}
