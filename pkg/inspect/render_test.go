// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pgkit/dbsync/pkg/schema"
)

func ptr(s string) *string { return &s }

func TestColumnDefinitionSerialRewrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		column   schema.Column
		expected string
	}{
		{
			name: "integer with nextval default becomes SERIAL",
			column: schema.Column{
				Name:    "id",
				Type:    "integer",
				Default: ptr("nextval('users_id_seq'::regclass)"),
			},
			expected: `"id" SERIAL`,
		},
		{
			name: "nextval match is case insensitive",
			column: schema.Column{
				Name:    "id",
				Type:    "integer",
				Default: ptr("NEXTVAL('users_id_seq'::regclass)"),
			},
			expected: `"id" SERIAL`,
		},
		{
			name: "serial rewrite drops not null and default",
			column: schema.Column{
				Name:     "id",
				Type:     "integer",
				Nullable: false,
				Default:  ptr("nextval('users_id_seq'::regclass)"),
			},
			expected: `"id" SERIAL`,
		},
		{
			name: "integer with plain default keeps it",
			column: schema.Column{
				Name:     "quantity",
				Type:     "integer",
				Nullable: true,
				Default:  ptr("1"),
			},
			expected: `"quantity" integer DEFAULT 1`,
		},
		{
			name: "bigint with nextval is not rewritten",
			column: schema.Column{
				Name:    "id",
				Type:    "bigint",
				Default: ptr("nextval('users_id_seq'::regclass)"),
			},
			expected: `"id" bigint NOT NULL DEFAULT nextval('users_id_seq'::regclass)`,
		},
		{
			name: "not null and default render in order",
			column: schema.Column{
				Name:     "status",
				Type:     "text",
				Nullable: false,
				Default:  ptr("'new'::text"),
			},
			expected: `"status" text NOT NULL DEFAULT 'new'::text`,
		},
		{
			name: "nullable without default is bare",
			column: schema.Column{
				Name:     "note",
				Type:     "text",
				Nullable: true,
			},
			expected: `"note" text`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, columnDefinition(tt.column))
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	table := &schema.Table{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "id", Type: "integer", Default: ptr("nextval('orders_id_seq'::regclass)")},
			{Name: "user_id", Type: "integer", Nullable: false},
			{Name: "quantity", Type: "integer", Nullable: true, Default: ptr("1")},
		},
		PrimaryKey: []string{"id"},
	}

	// SERIAL and the PRIMARY KEY clause stay separate; postgres accepts
	// the combination and makes the column NOT NULL implicitly.
	assert.Equal(t,
		`CREATE TABLE "orders" ("id" SERIAL, "user_id" integer NOT NULL, "quantity" integer DEFAULT 1, PRIMARY KEY ("id"))`,
		createTableSQL(table))
}

func TestCreateTableSQLCompositeKey(t *testing.T) {
	t.Parallel()

	table := &schema.Table{
		Name: "memberships",
		Columns: []schema.Column{
			{Name: "user_id", Type: "integer"},
			{Name: "group_id", Type: "integer"},
		},
		PrimaryKey: []string{"user_id", "group_id"},
	}

	assert.Equal(t,
		`CREATE TABLE "memberships" ("user_id" integer NOT NULL, "group_id" integer NOT NULL, PRIMARY KEY ("user_id", "group_id"))`,
		createTableSQL(table))
}

func TestAddColumnSQLOmitsNotNull(t *testing.T) {
	t.Parallel()

	// The column is added nullable even when the source model says NOT
	// NULL, so the ALTER cannot fail on non-empty tables.
	column := schema.Column{Name: "email", Type: "text", Nullable: false}
	assert.Equal(t, `ALTER TABLE "users" ADD COLUMN "email" text`, addColumnSQL("users", column))

	withDefault := schema.Column{Name: "status", Type: "text", Nullable: false, Default: ptr("'new'::text")}
	assert.Equal(t, `ALTER TABLE "orders" ADD COLUMN "status" text DEFAULT 'new'::text`, addColumnSQL("orders", withDefault))
}

func TestDropStatements(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `DROP TABLE "users" CASCADE`, dropTableSQL("users"))
	assert.Equal(t, `ALTER TABLE "users" DROP COLUMN "flag" CASCADE`, dropColumnSQL("users", "flag"))
	assert.Equal(t, `ALTER TABLE "orders" ALTER COLUMN "user_id" DROP NOT NULL`, dropNotNullSQL("orders", "user_id"))
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`INSERT INTO "users" ("id", "name") VALUES ($1, $2), ($3, $4)`,
		insertSQL("users", []string{"id", "name"}, 2))
}

func TestUpdateSQL(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`UPDATE "users" SET "name" = $1, "email" = $2 WHERE "id" = $3`,
		updateSQL("users", []string{"id"}, []string{"name", "email"}))

	assert.Equal(t,
		`UPDATE "m" SET "v" = $1 WHERE "a" = $2 AND "b" = $3`,
		updateSQL("m", []string{"a", "b"}, []string{"v"}))
}

func TestUniqueCheckSQLQuotesIdentifiers(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		`SELECT COUNT("email") = COUNT(DISTINCT "email") AND COUNT("email") > 0 FROM "users"`,
		uniqueCheckSQL("users", "email"))
}
