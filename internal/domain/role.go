package domain

// Role represents a user role in the repository
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleFinance   Role = "finance"
	RoleHR        Role = "hr"
	RoleLegal     Role = "legal"
	RoleTechnical Role = "technical"
)

// roleCategories maps each non-admin role to the categories it may see.
// Admin is handled separately: it sees every active document.
var roleCategories = map[Role][]Category{
	RoleFinance:   {CategoryFinance, CategoryInvoices},
	RoleHR:        {CategoryHR},
	RoleLegal:     {CategoryLegal, CategoryContracts},
	RoleTechnical: {CategoryTechnicalReports},
}

// IsValidRole checks if a Role is a member of the closed role enum
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleFinance, RoleHR, RoleLegal, RoleTechnical:
		return true
	}
	return false
}

// VisibleCategories returns the set of categories visible to the given role.
// Admin returns the full taxonomy. An unmapped role fails closed and sees
// nothing rather than leaking documents.
func VisibleCategories(r Role) []Category {
	if r == RoleAdmin {
		return Categories
	}
	cats, ok := roleCategories[r]
	if !ok {
		return nil
	}
	return cats
}

// CanSee reports whether the given role may see documents of the category
func CanSee(r Role, c Category) bool {
	if r == RoleAdmin {
		return true
	}
	for _, allowed := range roleCategories[r] {
		if allowed == c {
			return true
		}
	}
	return false
}
