package repository

import (
	"strings"
	"testing"
)

func TestListQuery(t *testing.T) {
	query, args := listQuery(ParcelFilter{})
	if strings.Contains(query, "where") || len(args) != 0 {
		t.Errorf("unfiltered query = %q %v", query, args)
	}
	for _, part := range []string{
		"case json_typeof(doc -> 'createdAt')",
		"end desc nulls last",
		"(doc ->> 'createdAt')::numeric end desc",
		`end collate "C" desc`,
		"created_at asc",
	} {
		if !strings.Contains(query, part) {
			t.Errorf("order clause is missing %q:\n%s", part, query)
		}
	}
	if strings.Index(query, "json_typeof(doc -> 'createdAt')") > strings.Index(query, "::numeric") {
		t.Error("createdAt must be ordered by type before value")
	}

	query, args = listQuery(ParcelFilter{CreatedBy: "a@x.com"})
	if !strings.Contains(query, "where created_by = $1 and json_typeof(doc -> 'created_by') = 'string'") {
		t.Errorf("filtered query = %q", query)
	}
	if len(args) != 1 || args[0] != "a@x.com" {
		t.Errorf("args = %v", args)
	}
}
