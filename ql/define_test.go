package ql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefineTable(t *testing.T) {
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
	}{
		{
			name:      "schemafull table",
			query:     DefineTable("users").Schemafull(),
			wantSurQL: "DEFINE TABLE users SCHEMAFULL",
		},
		{
			name:      "schemaless table with overwrite",
			query:     DefineTable("events").Overwrite().Schemaless(),
			wantSurQL: "DEFINE TABLE OVERWRITE events SCHEMALESS",
		},
		{
			name:      "table if not exists",
			query:     DefineTable("users").IfNotExists(),
			wantSurQL: "DEFINE TABLE IF NOT EXISTS users",
		},
		{
			name:      "table with changefeed",
			query:     DefineTable("orders").Schemafull().Changefeed(time.Hour, true),
			wantSurQL: "DEFINE TABLE orders SCHEMAFULL CHANGEFEED 1h0m0s INCLUDE ORIGINAL",
		},
		{
			name:      "table with permissions",
			query:     DefineTable("posts").Schemafull().Permissions("select", "FULL").Permissions("create", "WHERE user = $auth.id"),
			wantSurQL: "DEFINE TABLE posts SCHEMAFULL PERMISSIONS FOR SELECT FULL FOR CREATE WHERE user = $auth.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSurQL, tt.query.String())
		})
	}
}

func TestDefineField(t *testing.T) {
	tests := []struct {
		name      string
		query     Statement
		wantSurQL string
	}{
		{
			name:      "typed field",
			query:     DefineField("name", "users").Type("string"),
			wantSurQL: "DEFINE FIELD name ON TABLE users TYPE string",
		},
		{
			name:      "optional field with default",
			query:     DefineField("age", "users").Type("option<int>").Default("0"),
			wantSurQL: "DEFINE FIELD age ON TABLE users TYPE option<int> DEFAULT 0",
		},
		{
			name:      "field with assert and value",
			query:     DefineField("email", "users").Type("string").Assert("string::is::email($value)").Value("string::lowercase($value)"),
			wantSurQL: "DEFINE FIELD email ON TABLE users TYPE string VALUE string::lowercase($value) ASSERT string::is::email($value)",
		},
		{
			name:      "flexible readonly field",
			query:     DefineField("metadata", "users").Flexible().Type("object").Readonly(),
			wantSurQL: "DEFINE FIELD metadata ON TABLE users FLEXIBLE TYPE object READONLY",
		},
		{
			name:      "nested field path",
			query:     DefineField("address.city", "users").Type("string"),
			wantSurQL: "DEFINE FIELD address.city ON TABLE users TYPE string",
		},
		{
			name:      "overwrite field",
			query:     DefineField("name", "users").Overwrite().Type("string"),
			wantSurQL: "DEFINE FIELD OVERWRITE name ON TABLE users TYPE string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantSurQL, tt.query.String())
		})
	}
}

func TestDefineIndex(t *testing.T) {
	assert.Equal(t,
		"DEFINE INDEX email_idx ON TABLE users FIELDS email UNIQUE",
		DefineIndex("email_idx", "users", "email").Unique().String())

	assert.Equal(t,
		"DEFINE INDEX name_age_idx ON TABLE users FIELDS name, age",
		DefineIndex("name_age_idx", "users", "name", "age").String())

	assert.Equal(t,
		"DEFINE INDEX bio_search ON TABLE users FIELDS bio SEARCH ANALYZER ascii",
		DefineIndex("bio_search", "users", "bio").SearchAnalyzer("ascii").String())
}
