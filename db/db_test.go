package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLite(t *testing.T) {
	conn, err := Connect("sqlite", ":memory:", time.Second)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, 1, conn.Stats().MaxOpenConnections)
}

func TestConnectUnknownDriver(t *testing.T) {
	_, err := Connect("oracle", "whatever", time.Second)
	assert.Error(t, err)
}
