package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	got := Statements("CREATE TABLE a (id INT);\n\n  CREATE INDEX b ON a(id) ;\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX b ON a(id)"}, got)
	assert.Empty(t, Statements(" ;\n; "))
}

func TestMigrationsAreOrderedPerDialect(t *testing.T) {
	for _, dialect := range []string{"mysql", "postgres"} {
		ms, err := Migrations(dialect)
		require.NoError(t, err, dialect)
		require.NotEmpty(t, ms)
		for i := 1; i < len(ms); i++ {
			assert.Less(t, ms[i-1].Version, ms[i].Version)
		}
		assert.True(t, strings.Contains(ms[0].SQL, "uq_reservations_active_table"), dialect)
	}
	_, err := Migrations("oracle")
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn := MySQLDSN("app", "pw", "db", "3306", "reservations")
	assert.Contains(t, dsn, "app:pw@tcp(db:3306)/reservations?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}
