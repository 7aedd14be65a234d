package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RoleFinance, RoleHR, RoleLegal, RoleTechnical} {
		assert.True(t, IsValidRole(r), string(r))
	}
	assert.False(t, IsValidRole(""))
	assert.False(t, IsValidRole("superuser"))
	assert.False(t, IsValidRole("Admin"))
}

func TestVisibleCategories(t *testing.T) {
	t.Run("admin sees the full taxonomy", func(t *testing.T) {
		assert.Equal(t, Categories, VisibleCategories(RoleAdmin))
	})

	t.Run("finance sees finance and invoices", func(t *testing.T) {
		assert.Equal(t, []Category{CategoryFinance, CategoryInvoices}, VisibleCategories(RoleFinance))
	})

	t.Run("hr sees hr", func(t *testing.T) {
		assert.Equal(t, []Category{CategoryHR}, VisibleCategories(RoleHR))
	})

	t.Run("legal sees legal and contracts", func(t *testing.T) {
		assert.Equal(t, []Category{CategoryLegal, CategoryContracts}, VisibleCategories(RoleLegal))
	})

	t.Run("technical sees technical reports", func(t *testing.T) {
		assert.Equal(t, []Category{CategoryTechnicalReports}, VisibleCategories(RoleTechnical))
	})

	t.Run("unknown role sees nothing", func(t *testing.T) {
		assert.Empty(t, VisibleCategories("intern"))
		assert.Empty(t, VisibleCategories(""))
	})
}

func TestCanSee(t *testing.T) {
	t.Run("admin sees every category", func(t *testing.T) {
		for _, c := range Categories {
			assert.True(t, CanSee(RoleAdmin, c), string(c))
		}
	})

	t.Run("roles see only their categories", func(t *testing.T) {
		assert.True(t, CanSee(RoleFinance, CategoryInvoices))
		assert.False(t, CanSee(RoleFinance, CategoryHR))
		assert.False(t, CanSee(RoleFinance, CategoryOther))
		assert.True(t, CanSee(RoleLegal, CategoryContracts))
		assert.False(t, CanSee(RoleLegal, CategoryFinance))
		assert.False(t, CanSee(RoleHR, CategoryTechnicalReports))
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		for _, c := range Categories {
			assert.False(t, CanSee("intern", c), string(c))
		}
	})
}
