package filter

import (
	"fmt"

	"github.com/kailas-cloud/synapse/internal/domain/item"
)

// Field names the scope filter restricts on.
const (
	FieldUserID = "user_id"
	FieldType   = "type"
)

// Condition is a single equality clause.
type Condition struct {
	key   string
	value string
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Value returns the required field value.
func (c Condition) Value() string { return c.value }

// Scope is the mandatory per-user (and optionally per-type) restriction applied
// before any similarity computation.
type Scope struct {
	userID    string
	queryType item.QueryType
}

// NewScope builds the scope for userID. QueryAll adds no type condition.
func NewScope(userID string, qt item.QueryType) (Scope, error) {
	if userID == "" {
		return Scope{}, fmt.Errorf("scope requires a user id")
	}
	return Scope{userID: userID, queryType: item.ParseQueryType(string(qt))}, nil
}

// UserID returns the owner every matched document must belong to.
func (s Scope) UserID() string { return s.userID }

// QueryType returns the type restriction, QueryAll when unrestricted.
func (s Scope) QueryType() item.QueryType { return s.queryType }

// Conditions returns the equality clauses in a stable order: user first, then type.
func (s Scope) Conditions() []Condition {
	conds := []Condition{{key: FieldUserID, value: s.userID}}
	if s.queryType != item.QueryAll {
		conds = append(conds, Condition{key: FieldType, value: string(s.queryType)})
	}
	return conds
}

// Matches reports whether a document with the given field values satisfies every condition.
func (s Scope) Matches(fields map[string]string) bool {
	for _, c := range s.Conditions() {
		if fields[c.key] != c.value {
			return false
		}
	}
	return true
}

// String renders the scope for logs.
func (s Scope) String() string {
	return fmt.Sprintf("user_id=%s type=%s", s.userID, s.queryType)
}
