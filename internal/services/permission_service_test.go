package services

import (
	"context"
	"testing"

	"go-pos-retail/internal/database"
	"go-pos-retail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPermissionSvc(t *testing.T) *PermissionService {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, database.Seed(db, zap.NewNop(), "", ""))
	svc, err := NewPermissionService(context.Background(), db, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestPermissions_SeededDefaults(t *testing.T) {
	svc := newPermissionSvc(t)

	assert.True(t, svc.HasPermission("cashier", ModuleInvoices, ActionAdd))
	assert.True(t, svc.HasPermission("Cashier", ModuleProducts, ActionView))
	assert.False(t, svc.HasPermission("cashier", ModuleProducts, ActionDelete))
	assert.False(t, svc.HasPermission("cashier", ModuleInventory, ActionAdd))
	assert.True(t, svc.HasPermission("manager", ModuleInventory, ActionAdd))
	assert.False(t, svc.HasPermission("", ModuleProducts, ActionView))
	assert.False(t, svc.HasPermission("intern", ModuleProducts, ActionView))
}

func TestPermissions_AdminBypasses(t *testing.T) {
	svc := newPermissionSvc(t)
	assert.True(t, svc.HasPermission("admin", ModuleRoles, ActionDelete))
	assert.True(t, svc.HasPermission("admin", "anything", "whatever"))
}

func TestPermissions_SetRoleReloads(t *testing.T) {
	svc := newPermissionSvc(t)
	ctx := context.Background()

	rows, err := svc.SetRole(ctx, "cashier", []models.RolePermission{
		{Module: "Inventory", CanView: true, CanAdd: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "inventory", rows[0].Module)

	assert.True(t, svc.HasPermission("cashier", ModuleInventory, ActionAdd))
	// replaced, not merged
	assert.False(t, svc.HasPermission("cashier", ModuleInvoices, ActionAdd))

	stored, err := svc.ForRole(ctx, "cashier")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPermissions_SetRoleRejections(t *testing.T) {
	svc := newPermissionSvc(t)
	ctx := context.Background()

	_, err := svc.SetRole(ctx, "admin", nil)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetRole(ctx, "cashier", []models.RolePermission{{Module: "payroll", CanView: true}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.SetRole(ctx, "cashier", []models.RolePermission{{Module: "products"}, {Module: "PRODUCTS"}})
	assert.ErrorIs(t, err, ErrValidation)

	// nothing changed
	assert.True(t, svc.HasPermission("cashier", ModuleInvoices, ActionAdd))
}
