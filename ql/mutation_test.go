package ql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreate(t *testing.T) {
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
		wantVars  map[string]any
	}{
		{
			name:      "create with set fields sorted",
			query:     Create("users").Set("name", "Tobie").Set("age", 30),
			wantSurQL: "CREATE users SET age = $age_1, name = $name_1",
			wantVars:  map[string]any{"age_1": 30, "name_1": "Tobie"},
		},
		{
			name:      "create with content",
			query:     Create("users:tobie").Content(map[string]any{"name": "Tobie"}),
			wantSurQL: "CREATE users:tobie CONTENT $content_1",
			wantVars:  map[string]any{"content_1": map[string]any{"name": "Tobie"}},
		},
		{
			name:      "create only with return none",
			query:     Create("users").Only().Set("name", "Tobie").ReturnNone(),
			wantSurQL: "CREATE ONLY users SET name = $name_1 RETURN NONE",
			wantVars:  map[string]any{"name_1": "Tobie"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := tt.query.Build()
			assert.Equal(t, tt.wantSurQL, sql)
			assert.Equal(t, tt.wantVars, vars)
		})
	}
}

func TestReservedWordTargets(t *testing.T) {
	// Bare table names get identifier escaping; record ID strings pass
	// through so the ID part keeps its meaning.
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
	}{
		{"select", Select("order"), "SELECT * FROM `order`"},
		{"select record id", Select("order:123"), "SELECT * FROM order:123"},
		{"create", Create("order").Set("total", 1), "CREATE `order` SET total = $total_1"},
		{"update", Update("order").Set("total", 1), "UPDATE `order` SET total = $total_1"},
		{"upsert", Upsert("order").Set("total", 1), "UPSERT `order` SET total = $total_1"},
		{"delete", Delete("order"), "DELETE `order`"},
		{"delete record id", Delete("order:123"), "DELETE order:123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := tt.query.Build()
			assert.Equal(t, tt.wantSurQL, sql)
		})
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
		wantVars  map[string]any
	}{
		{
			name:      "update set with where",
			query:     Update("users").Set("active", false).Where(Lt("last_seen", "2024-01-01")),
			wantSurQL: "UPDATE users SET active = $active_1 WHERE last_seen < $last_seen_1",
			wantVars:  map[string]any{"active_1": false, "last_seen_1": "2024-01-01"},
		},
		{
			name:      "update merge",
			query:     Update("users:tobie").Merge(map[string]any{"age": 31}),
			wantSurQL: "UPDATE users:tobie MERGE $merge_1",
			wantVars:  map[string]any{"merge_1": map[string]any{"age": 31}},
		},
		{
			name:      "update content",
			query:     Update("users:tobie").Content(map[string]any{"name": "Tobie"}),
			wantSurQL: "UPDATE users:tobie CONTENT $content_1",
			wantVars:  map[string]any{"content_1": map[string]any{"name": "Tobie"}},
		},
		{
			name:      "update with raw set expression",
			query:     Update("products").SetRaw("stock += ?", 5).Where(Eq("sku", "X1")),
			wantSurQL: "UPDATE products SET stock += $param_1 WHERE sku = $sku_1",
			wantVars:  map[string]any{"param_1": 5, "sku_1": "X1"},
		},
		{
			name:      "update return after",
			query:     Update("users:tobie").Set("age", 31).ReturnAfter(),
			wantSurQL: "UPDATE users:tobie SET age = $age_1 RETURN AFTER",
			wantVars:  map[string]any{"age_1": 31},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := tt.query.Build()
			assert.Equal(t, tt.wantSurQL, sql)
			assert.Equal(t, tt.wantVars, vars)
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
		wantVars  map[string]any
	}{
		{
			name:      "delete all",
			query:     Delete("users"),
			wantSurQL: "DELETE users",
			wantVars:  map[string]any{},
		},
		{
			name:      "delete with where and return before",
			query:     Delete("users").Where(Eq("banned", true)).ReturnBefore(),
			wantSurQL: "DELETE users WHERE banned = $banned_1 RETURN BEFORE",
			wantVars:  map[string]any{"banned_1": true},
		},
		{
			name:      "delete only record",
			query:     Delete("users:tobie").Only(),
			wantSurQL: "DELETE ONLY users:tobie",
			wantVars:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := tt.query.Build()
			assert.Equal(t, tt.wantSurQL, sql)
			assert.Equal(t, tt.wantVars, vars)
		})
	}
}

func TestUpsert(t *testing.T) {
	sql, vars := Upsert("users:tobie").Set("name", "Tobie").Build()
	assert.Equal(t, "UPSERT users:tobie SET name = $name_1", sql)
	assert.Equal(t, map[string]any{"name_1": "Tobie"}, vars)

	sql, vars = Upsert("settings").Merge(map[string]any{"theme": "dark"}).Where(Eq("user", "tobie")).Build()
	assert.Equal(t, "UPSERT settings MERGE $merge_1 WHERE user = $user_1", sql)
	assert.Equal(t, map[string]any{"merge_1": map[string]any{"theme": "dark"}, "user_1": "tobie"}, vars)
}

func TestInsert(t *testing.T) {
	type product struct {
		Name string `json:"name"`
	}

	sql, vars := Insert("products", product{Name: "a"}, product{Name: "b"}).Build()
	assert.Equal(t, "INSERT INTO products $values_1", sql)
	assert.Equal(t, map[string]any{"values_1": []any{product{Name: "a"}, product{Name: "b"}}}, vars)

	sql, vars = Insert("products", product{Name: "a"}).Build()
	assert.Equal(t, "INSERT INTO products $values_1", sql)
	assert.Equal(t, map[string]any{"values_1": product{Name: "a"}}, vars)

	sql, _ = InsertRelation("follows", map[string]any{"in": "users:a", "out": "users:b"}).Build()
	assert.Equal(t, "INSERT RELATION INTO follows $values_1", sql)
}

func TestRelate(t *testing.T) {
	sql, vars := Relate("users:tobie", "wrote", "posts:first").Set("at", "2024-01-01").Build()
	assert.Equal(t, "RELATE users:tobie->wrote->posts:first SET at = $at_1", sql)
	assert.Equal(t, map[string]any{"at_1": "2024-01-01"}, vars)

	sql, vars = Relate("users:tobie", "likes", "posts:first").Only().Content(map[string]any{"weight": 2}).Build()
	assert.Equal(t, "RELATE ONLY users:tobie->likes->posts:first CONTENT $content_1", sql)
	assert.Equal(t, map[string]any{"content_1": map[string]any{"weight": 2}}, vars)
}
