package sandbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuery(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr string
	}{
		{
			name:  "simple select",
			query: "SELECT * FROM products",
		},
		{
			name:  "select with union",
			query: "SELECT name FROM products WHERE 1=0 UNION SELECT flag_value FROM debug_flags",
		},
		{
			name:  "leading whitespace select",
			query: "   select id, name from categories",
		},
		{
			name:    "too long",
			query:   "SELECT " + strings.Repeat("a", MaxQueryLength),
			wantErr: "Query too long. Maximum 500 characters allowed.",
		},
		{
			name:    "insert blocked",
			query:   "INSERT INTO products (name) VALUES ('x')",
			wantErr: "Keyword 'INSERT' is not allowed.",
		},
		{
			name:    "drop blocked even inside select",
			query:   "SELECT * FROM products; DROP TABLE products",
			wantErr: "Keyword 'DROP' is not allowed.",
		},
		{
			name:    "lowercase keyword still caught",
			query:   "delete from products",
			wantErr: "Keyword 'DELETE' is not allowed.",
		},
		{
			name:    "pragma blocked",
			query:   "PRAGMA table_info(products)",
			wantErr: "Keyword 'PRAGMA' is not allowed.",
		},
		{
			name:    "load_extension blocked",
			query:   "SELECT load_extension('evil')",
			wantErr: "Function 'load_extension' is not allowed.",
		},
		{
			name:    "char blocked",
			query:   "SELECT char(70,76,65,71)",
			wantErr: "Function 'char' is not allowed.",
		},
		{
			name:    "sqlite_master blocked",
			query:   "SELECT name FROM sqlite_master",
			wantErr: "Direct access to system tables is not allowed.",
		},
		{
			name:    "mixed case system table blocked",
			query:   "SELECT name FROM SQLite_Master",
			wantErr: "Direct access to system tables is not allowed.",
		},
		{
			name:    "non select rejected",
			query:   "WITH x AS (SELECT 1) SELECT * FROM x",
			wantErr: "Only SELECT queries are allowed.",
		},
		{
			name:    "semicolon rejected",
			query:   "SELECT 1;",
			wantErr: "Multiple statements are not allowed.",
		},
		{
			name:    "line comment rejected",
			query:   "SELECT * FROM products -- comment",
			wantErr: "Comments are not allowed in queries.",
		},
		{
			name:    "block comment rejected",
			query:   "SELECT /* sneaky */ * FROM products",
			wantErr: "Comments are not allowed in queries.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuery(tt.query, MaxQueryLength)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

// 规则顺序是契约的一部分：超长优先于关键词，关键词优先于函数名
func TestValidateQueryRuleOrder(t *testing.T) {
	long := "INSERT " + strings.Repeat("x", MaxQueryLength)
	err := ValidateQuery(long, MaxQueryLength)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Query too long")

	err = ValidateQuery("DELETE FROM t WHERE load_extension('x')", MaxQueryLength)
	require.Error(t, err)
	assert.Equal(t, "Keyword 'DELETE' is not allowed.", err.Error())
}
