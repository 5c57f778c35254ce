package logic

import (
	"context"
	"reflect"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// MockConn records queries and answers them through the Func fields
type MockConn struct {
	driver.Conn
	QueryFunc    func(query string, args ...any) (driver.Rows, error)
	QueryRowFunc func(query string, args ...any) driver.Row
	Queries      []string
	Args         [][]any
}

func (m *MockConn) Query(ctx context.Context, query string, args ...any) (driver.Rows, error) {
	m.Queries = append(m.Queries, query)
	m.Args = append(m.Args, args)
	return m.QueryFunc(query, args...)
}

func (m *MockConn) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	m.Queries = append(m.Queries, query)
	m.Args = append(m.Args, args)
	return m.QueryRowFunc(query, args...)
}

// MockRows serves Data one row per Next
type MockRows struct {
	driver.Rows
	Data     [][]any
	rowIndex int
}

func (m *MockRows) Next() bool {
	m.rowIndex++
	return m.rowIndex <= len(m.Data)
}

func (m *MockRows) Scan(dest ...any) error {
	row := m.Data[m.rowIndex-1]
	for i := range dest {
		assign(dest[i], row[i])
	}
	return nil
}

func (m *MockRows) Close() error {
	return nil
}

func (m *MockRows) Err() error {
	return nil
}

type MockRow struct {
	driver.Row
	Vals []any
	err  error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	for i := range dest {
		assign(dest[i], m.Vals[i])
	}
	return nil
}

func (m *MockRow) Err() error {
	return m.err
}

func assign(dest any, val any) {
	// Simple reflection to assign value to pointer
	v := reflect.ValueOf(dest).Elem()
	v.Set(reflect.ValueOf(val))
}
