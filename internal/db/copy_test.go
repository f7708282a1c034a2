package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "observations", []string{"series_id", "value"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"observations"}, []string{"series_id", "value"}).WillReturnResult(3)

	rows := [][]any{
		{"LNS14000000", 3.7},
		{"LNS14000000", 3.8},
		{"LNS14000000", 3.9},
	}
	n, err := CopyFrom(context.Background(), mock, "observations", []string{"series_id", "value"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"observations"}, []string{"series_id"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyFrom(context.Background(), mock, "observations", []string{"series_id"}, [][]any{{"CUUR0000SA0"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO observations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_EmptyRows(t *testing.T) {
	n, err := CopyFromSchema(context.TODO(), nil, "ecostats", "observations", []string{"series_id"}, [][]any{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFromSchema_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ecostats", "observations"}, []string{"series_id", "value"}).WillReturnResult(2)

	rows := [][]any{{"CES0000000001", 158724.0}, {"CES0000000001", 158901.0}}
	n, err := CopyFromSchema(context.Background(), mock, "ecostats", "observations", []string{"series_id", "value"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromSchema_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"ecostats", "observations"}, []string{"series_id"}).WillReturnError(fmt.Errorf("permission denied"))

	_, err = CopyFromSchema(context.Background(), mock, "ecostats", "observations", []string{"series_id"}, [][]any{{"x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO ecostats.observations")
	assert.NoError(t, mock.ExpectationsWereMet())
}
