package access

import (
	"context"
	"errors"
	"testing"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/businesses"
)

func TestAllowedTable(t *testing.T) {
	type row struct {
		perm       Permission
		owner      bool
		accountant bool
		staff      bool
	}
	rows := []row{
		{PermListTransactions, true, true, false},
		{PermCreateTransaction, true, false, true},
		{PermEditTransaction, true, false, false},
		{PermAttachDocument, true, false, false},
		{PermViewReports, true, true, false},
		{PermViewBreakdown, true, true, false},
		{PermViewTopItems, true, false, false},
		{PermViewDashboard, true, true, true},
		{PermExportReports, true, false, false},
		{PermViewInventory, true, false, false},
		{PermCreateInventory, true, false, false},
		{PermViewLowStock, true, false, true},
		{PermViewTodayStats, false, false, true},
		{PermManageMembers, true, false, false},
		{PermPredictProfit, true, false, false},
	}
	for _, r := range rows {
		if got := Allowed(businesses.RoleOwner, r.perm); got != r.owner {
			t.Fatalf("%s owner: got %v want %v", r.perm, got, r.owner)
		}
		if got := Allowed(businesses.RoleAccountant, r.perm); got != r.accountant {
			t.Fatalf("%s accountant: got %v want %v", r.perm, got, r.accountant)
		}
		if got := Allowed(businesses.RoleStaff, r.perm); got != r.staff {
			t.Fatalf("%s staff: got %v want %v", r.perm, got, r.staff)
		}
		// deny-by-default: отсутствие роли запрещает всё
		if Allowed(businesses.RoleNone, r.perm) {
			t.Fatalf("%s: RoleNone must be denied", r.perm)
		}
	}
}

func TestAllowedUnknownPermission(t *testing.T) {
	if Allowed(businesses.RoleOwner, Permission("reports.delete_everything")) {
		t.Fatal("unknown permission must be denied even for owner")
	}
}

type fakeRoles struct {
	role businesses.Role
	err  error
}

func (f fakeRoles) ResolveRole(ctx context.Context, userID, businessID int64) (businesses.Role, error) {
	return f.role, f.err
}

func TestRequire(t *testing.T) {
	cases := []struct {
		name    string
		roles   fakeRoles
		perm    Permission
		want    businesses.Role
		wantErr error
	}{
		{"owner allowed", fakeRoles{role: businesses.RoleOwner}, PermEditTransaction, businesses.RoleOwner, nil},
		{"staff forbidden to list", fakeRoles{role: businesses.RoleStaff}, PermListTransactions, businesses.RoleNone, apperr.ErrForbidden},
		{"staff allowed low stock", fakeRoles{role: businesses.RoleStaff}, PermViewLowStock, businesses.RoleStaff, nil},
		{"non-member forbidden", fakeRoles{role: businesses.RoleNone}, PermViewDashboard, businesses.RoleNone, apperr.ErrForbidden},
		{"missing business not found", fakeRoles{err: apperr.ErrNotFound}, PermViewDashboard, businesses.RoleNone, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.roles)
			role, err := r.Require(context.Background(), 1, 2, tc.perm)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err=%v want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if role != tc.want {
				t.Fatalf("role=%q want %q", role, tc.want)
			}
		})
	}
}
