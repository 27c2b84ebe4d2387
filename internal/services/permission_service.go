package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go-pos-retail/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Modules guarded by role permissions
const (
	ModuleProducts  = "products"
	ModuleCustomers = "customers"
	ModuleInvoices  = "invoices"
	ModuleInventory = "inventory"
	ModuleReports   = "reports"
	ModuleRoles     = "roles"
)

// Actions a role may hold on a module
const (
	ActionView   = "view"
	ActionAdd    = "add"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// RoleAdmin bypasses every permission check.
const RoleAdmin = "admin"

var knownModules = map[string]bool{
	ModuleProducts:  true,
	ModuleCustomers: true,
	ModuleInvoices:  true,
	ModuleInventory: true,
	ModuleReports:   true,
	ModuleRoles:     true,
}

const permissionModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// PermissionService answers hasPermission(role, module, action) from the
// RolePermission table. Policies live in memory and are rebuilt on change.
type PermissionService struct {
	db  *gorm.DB
	log *zap.Logger

	mu       sync.RWMutex
	enforcer *casbin.SyncedEnforcer
}

func NewPermissionService(ctx context.Context, db *gorm.DB, log *zap.Logger) (*PermissionService, error) {
	s := &PermissionService{db: db, log: log.Named("permission.service")}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the enforcer from storage and swaps it in.
func (s *PermissionService) Reload(ctx context.Context) error {
	var rows []models.RolePermission
	if err := s.db.WithContext(ctx).Order("role").Order("module").Find(&rows).Error; err != nil {
		return err
	}

	m, err := model.NewModelFromString(permissionModel)
	if err != nil {
		return err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return err
	}
	policies := policiesFor(rows)
	if len(policies) > 0 {
		if _, err := enforcer.AddPolicies(policies); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.enforcer = enforcer
	s.mu.Unlock()
	s.log.Debug("permissions loaded", zap.Int("rows", len(rows)), zap.Int("policies", len(policies)))
	return nil
}

// HasPermission reports whether role may perform action on module.
func (s *PermissionService) HasPermission(role, module, action string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == RoleAdmin {
		return true
	}
	if role == "" {
		return false
	}

	s.mu.RLock()
	enforcer := s.enforcer
	s.mu.RUnlock()
	if enforcer == nil {
		return false
	}
	ok, err := enforcer.Enforce(role, strings.ToLower(module), strings.ToLower(action))
	if err != nil {
		s.log.Warn("permission check failed", zap.String("role", role), zap.Error(err))
		return false
	}
	return ok
}

// ForRole lists the stored capability rows of a role.
func (s *PermissionService) ForRole(ctx context.Context, role string) ([]models.RolePermission, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	var rows []models.RolePermission
	err := s.db.WithContext(ctx).Where("role = ?", role).Order("module").Find(&rows).Error
	return rows, err
}

// SetRole replaces every capability row of a role and reloads the policies.
func (s *PermissionService) SetRole(ctx context.Context, role string, perms []models.RolePermission) ([]models.RolePermission, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return nil, fmt.Errorf("%w: role is required", ErrValidation)
	}
	if role == RoleAdmin {
		return nil, fmt.Errorf("%w: the admin role always has every permission", ErrValidation)
	}

	rows := make([]models.RolePermission, 0, len(perms))
	seen := map[string]bool{}
	for _, p := range perms {
		module := strings.ToLower(strings.TrimSpace(p.Module))
		if !knownModules[module] {
			return nil, fmt.Errorf("%w: module %q is not supported", ErrValidation, p.Module)
		}
		if seen[module] {
			return nil, fmt.Errorf("%w: module %q listed twice", ErrValidation, module)
		}
		seen[module] = true
		rows = append(rows, models.RolePermission{
			Role:      role,
			Module:    module,
			CanView:   p.CanView,
			CanAdd:    p.CanAdd,
			CanEdit:   p.CanEdit,
			CanDelete: p.CanDelete,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role = ?", role).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	s.log.Info("role permissions replaced", zap.String("role", role), zap.Int("modules", len(rows)))
	return rows, nil
}

func policiesFor(rows []models.RolePermission) [][]string {
	var out [][]string
	for _, r := range rows {
		role := strings.ToLower(r.Role)
		module := strings.ToLower(r.Module)
		for action, granted := range map[string]bool{
			ActionView:   r.CanView,
			ActionAdd:    r.CanAdd,
			ActionEdit:   r.CanEdit,
			ActionDelete: r.CanDelete,
		} {
			if granted {
				out = append(out, []string{role, module, action})
			}
		}
	}
	return out
}
