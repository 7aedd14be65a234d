package analysis

import (
	"strings"

	"github.com/harborlabs/docvault/internal/domain"
)

// classificationRule maps trigger keywords to a category. Rules are
// evaluated in order and the first match wins.
type classificationRule struct {
	category        domain.Category
	contentKeywords []string
	fileKeyword     string
}

var classificationRules = []classificationRule{
	{domain.CategoryFinance, []string{"invoice", "payment", "budget"}, "invoice"},
	{domain.CategoryHR, []string{"employee", "hiring", "salary"}, "hr"},
	{domain.CategoryContracts, []string{"contract", "agreement", "terms"}, "contract"},
	{domain.CategoryLegal, []string{"legal", "compliance", "regulation"}, "legal"},
	{domain.CategoryTechnicalReports, []string{"technical", "software", "development"}, "tech"},
}

// Classify maps document content and file name to a taxonomy category
// using keyword-presence rules. It is total: when no rule matches it
// returns CategoryOther.
func Classify(content, fileName string) domain.Category {
	lowerContent := strings.ToLower(content)
	lowerFileName := strings.ToLower(fileName)

	for _, rule := range classificationRules {
		if strings.Contains(lowerFileName, rule.fileKeyword) {
			return rule.category
		}
		for _, keyword := range rule.contentKeywords {
			if strings.Contains(lowerContent, keyword) {
				return rule.category
			}
		}
	}

	return domain.CategoryOther
}
