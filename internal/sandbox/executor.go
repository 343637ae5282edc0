package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrQueryTimeout 超时错误要和引擎语法错误可区分
var ErrQueryTimeout = errors.New("Query timeout")

type QueryResult struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"rowCount"`
}

// Execute 在指定副本上运行已通过校验的查询。
// 超时走 context 硬取消（sqlite3 驱动会中断底层执行，不是丢弃结果了事）。
// 行数截断到 maxRows，但计时覆盖完整扫描。耗时（毫秒）成功失败都返回。
func Execute(ctx context.Context, db *sql.DB, query string, timeout time.Duration, maxRows int) (*QueryResult, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, elapsedMs(start), wrapEngineError(ctx, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, elapsedMs(start), wrapEngineError(ctx, err)
	}

	var kept [][]interface{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, elapsedMs(start), wrapEngineError(ctx, err)
		}
		if len(kept) < maxRows {
			for i, v := range values {
				if b, ok := v.([]byte); ok {
					values[i] = string(b)
				}
			}
			kept = append(kept, values)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, elapsedMs(start), wrapEngineError(ctx, err)
	}

	result := &QueryResult{
		Columns:  cols,
		Rows:     kept,
		RowCount: len(kept),
	}
	if len(kept) == 0 {
		result.Columns = []string{}
		result.Rows = [][]interface{}{}
	}

	return result, elapsedMs(start), nil
}

func elapsedMs(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}

func wrapEngineError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrQueryTimeout
	}
	return fmt.Errorf("SQL Error: %s", err.Error())
}
