// SPDX-License-Identifier: Apache-2.0

// Package seed holds the demo datasets used to bootstrap a reference and
// a target database with deliberate schema and data drift between them.
package seed

import (
	"context"

	"github.com/pgkit/dbsync/pkg/inspect"
)

// ResetStatements wipe the public schema so seeding starts clean.
var ResetStatements = []string{
	`DROP SCHEMA public CASCADE`,
	`CREATE SCHEMA public`,
	`GRANT ALL ON SCHEMA public TO public`,
}

// ReferenceStatements build the reference side: users, products, orders
// with foreign keys, and a reference-only log table.
var ReferenceStatements = []string{
	`CREATE TABLE public.users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT UNIQUE,
		is_active BOOLEAN DEFAULT TRUE
	)`,
	`CREATE TABLE public.products (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		sku TEXT,
		price NUMERIC(10, 2)
	)`,
	`CREATE TABLE public.orders (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		product_id INTEGER,
		quantity INTEGER DEFAULT 1,
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES public.users(id),
		CONSTRAINT fk_orders_product FOREIGN KEY (product_id) REFERENCES public.products(id)
	)`,
	`CREATE TABLE public.test_only_logs (
		id SERIAL PRIMARY KEY,
		message TEXT,
		created_at TIMESTAMP DEFAULT NOW()
	)`,
	`INSERT INTO public.users (username, email) VALUES
		('admin', 'admin@test.com'),
		('developer', 'dev@test.com'),
		('tester', 'test@test.com')`,
	`INSERT INTO public.products (title, sku, price) VALUES
		('Laptop Pro', 'LPT-001', 1500.00),
		('Mechanical Keyboard', 'KBD-42', 120.50)`,
	`INSERT INTO public.orders (user_id, product_id, quantity) VALUES
		(1, 1, 1),
		(2, 2, 2)`,
	`INSERT INTO public.test_only_logs (message) VALUES
		('Database seeded'),
		('Test log entry')`,
}

// TargetStatements build the target side with drifted shapes: users carry
// a phone column instead of email, orders lack foreign keys, and a
// target-only archive table exists.
var TargetStatements = []string{
	`CREATE TABLE public.users (
		id SERIAL PRIMARY KEY,
		username TEXT NOT NULL,
		phone TEXT
	)`,
	`CREATE TABLE public.products (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		stock_count INTEGER DEFAULT 0
	)`,
	`CREATE TABLE public.orders (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL,
		product_id INTEGER,
		status TEXT DEFAULT 'new'
	)`,
	`CREATE TABLE public.prod_legacy_archive (
		id SERIAL PRIMARY KEY,
		old_data TEXT,
		archived_at DATE DEFAULT CURRENT_DATE
	)`,
	`INSERT INTO public.users (id, username, phone) VALUES
		(1, 'admin', '+79991234567'),
		(5, 'old_manager', '+70001112233')`,
	`INSERT INTO public.products (title, stock_count) VALUES
		('Laptop Pro', 5),
		('Old Mouse', 100)`,
	`INSERT INTO public.orders (user_id, product_id, status) VALUES
		(1, 1, 'completed'),
		(5, 2, 'pending')`,
	`INSERT INTO public.prod_legacy_archive (old_data) VALUES
		('Legacy record 2023')`,
}

// Apply resets the public schema and runs the given statements in order.
func Apply(ctx context.Context, inspector *inspect.Inspector, statements []string) error {
	for _, stmt := range ResetStatements {
		if err := inspector.ExecRaw(ctx, stmt); err != nil {
			return err
		}
	}
	for _, stmt := range statements {
		if err := inspector.ExecRaw(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
