package repository

import "gorm.io/gorm/clause"

// lockingClause returns a SELECT ... FOR UPDATE clause. FindByIDForUpdate
// applies it only when the dialect is mysql; the sqlite test path never
// sees it.
func lockingClause() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
