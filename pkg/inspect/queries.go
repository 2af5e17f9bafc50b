// SPDX-License-Identifier: Apache-2.0

package inspect

// Catalog query for the columns of every ordinary table in the public
// schema, in attribute-number order. Dropped attributes and system columns
// are excluded.
const columnsQuery = `
SELECT c.relname AS table_name,
       a.attname AS column_name,
       format_type(a.atttypid, a.atttypmod) AS column_type,
       NOT a.attnotnull AS is_nullable,
       pg_get_expr(ad.adbin, ad.adrelid) AS default_expression
FROM pg_attribute a
JOIN pg_class c ON c.oid = a.attrelid
JOIN pg_namespace n ON n.oid = c.relnamespace
LEFT JOIN pg_attrdef ad ON ad.adrelid = a.attrelid AND ad.adnum = a.attnum
WHERE n.nspname = 'public'
  AND c.relkind = 'r'
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY c.relname, a.attnum
`

// Catalog query for the primary key columns of every table in the public
// schema, in ordinal position order.
const primaryKeyQuery = `
SELECT tc.table_name,
       kcu.column_name,
       kcu.ordinal_position
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name
  AND tc.table_schema = kcu.table_schema
WHERE tc.table_schema = 'public'
  AND tc.constraint_type = 'PRIMARY KEY'
ORDER BY tc.table_name, kcu.ordinal_position
`

const listTablesQuery = `SELECT tablename FROM pg_catalog.pg_tables WHERE schemaname = 'public'`
