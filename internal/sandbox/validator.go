package sandbox

import (
	"fmt"
	"strings"
)

const MaxQueryLength = 500

// 黑名单故意只做大小写不敏感的子串匹配，不做词法分析。
// UNION、子查询等绕过手段是关卡预期的解题路径，收紧列表会把题做死。
var blockedKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER", "TRUNCATE",
	"REPLACE", "PRAGMA", "ATTACH", "DETACH", "VACUUM", "ANALYZE", "REINDEX",
	"SAVEPOINT", "RELEASE", "ROLLBACK", "COMMIT", "BEGIN", "TRANSACTION",
}

var blockedFunctions = []string{"load_extension", "readfile", "writefile", "char", "load"}

var blockedTables = []string{"sqlite_master", "sqlite_sequence", "sqlite_stat1"}

// ValidateQuery 在执行前对查询文本做纯静态过滤，规则按顺序短路。
// maxLen 非正数时回退到包内缺省值。
// 返回 nil 表示放行，否则返回给用户看的拒绝原因。
func ValidateQuery(query string, maxLen int) error {
	if maxLen <= 0 {
		maxLen = MaxQueryLength
	}
	if len(query) > maxLen {
		return fmt.Errorf("Query too long. Maximum %d characters allowed.", maxLen)
	}

	upperQuery := strings.ToUpper(query)
	lowerQuery := strings.ToLower(query)

	for _, keyword := range blockedKeywords {
		if strings.Contains(upperQuery, keyword) {
			return fmt.Errorf("Keyword '%s' is not allowed.", keyword)
		}
	}

	for _, fn := range blockedFunctions {
		if strings.Contains(lowerQuery, fn) {
			return fmt.Errorf("Function '%s' is not allowed.", fn)
		}
	}

	for _, table := range blockedTables {
		if strings.Contains(lowerQuery, table) {
			return fmt.Errorf("Direct access to system tables is not allowed.")
		}
	}

	if !strings.HasPrefix(strings.TrimSpace(upperQuery), "SELECT") {
		return fmt.Errorf("Only SELECT queries are allowed.")
	}

	// 禁分号，堵多语句
	if strings.Contains(query, ";") {
		return fmt.Errorf("Multiple statements are not allowed.")
	}

	// 禁注释，堵注释绕过
	if strings.Contains(query, "--") || strings.Contains(query, "/*") || strings.Contains(query, "*/") {
		return fmt.Errorf("Comments are not allowed in queries.")
	}

	return nil
}
