package complaint

import (
	"sort"
	"strings"

	"github.com/shahmeerabdul/GIKomplain/internal/models"
)

// RouteDepartment picks the first department, by name, whose name contains
// category. The match is case-sensitive and only a heuristic: "Computer"
// routes to "Computer Science", "IT" routes nowhere. Returns nil when
// nothing matches.
func RouteDepartment(departments []models.Department, category string) *string {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil
	}
	sorted := append([]models.Department(nil), departments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, d := range sorted {
		if strings.Contains(d.Name, category) {
			id := d.ID
			return &id
		}
	}
	return nil
}
