package logic

import (
	"context"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// latencyConn simulates a fixed round trip per query
func latencyConn(latency time.Duration) *MockConn {
	return &MockConn{
		QueryRowFunc: func(query string, args ...any) driver.Row {
			time.Sleep(latency)
			return &MockRow{Vals: []any{uint64(100), uint64(52), 25.0, 23.0, 39.5}}
		},
		QueryFunc: func(query string, args ...any) (driver.Rows, error) {
			time.Sleep(latency)
			return &MockRows{Data: [][]any{{"radiant", uint16(97)}, {"dire", uint16(2)}}}, nil
		},
	}
}

func BenchmarkGetSideComparison(b *testing.B) {
	// Simulate 1ms latency per query
	service := NewTeamStatsService(latencyConn(time.Millisecond), heroNames)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.GetSideComparison(ctx, 30)
		if err != nil {
			b.Fatalf("GetSideComparison failed: %v", err)
		}
	}
}

func TestGetSideComparisonQueryCount(t *testing.T) {
	conn := latencyConn(0)
	service := NewTeamStatsService(conn, heroNames)

	_, err := service.GetSideComparison(context.Background(), 30)
	if err != nil {
		t.Fatalf("GetSideComparison failed: %v", err)
	}
	if len(conn.Queries) != 2 {
		t.Errorf("expected 2 queries, got %d", len(conn.Queries))
	}
}
