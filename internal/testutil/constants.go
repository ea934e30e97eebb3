// Package testutil provides common constants and utilities for tests
package testutil

import "time"

// ShortTestTimeout bounds quick database operations in tests
const ShortTestTimeout = 5 * time.Second

// ShopDDL is the customers/orders schema used across package tests
const ShopDDL = `
CREATE TABLE customers (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	customer_id INTEGER REFERENCES customers(id),
	total REAL
);
`

// ShopSeed inserts two customers and three orders
const ShopSeed = `
INSERT INTO customers (id, name) VALUES (1, 'Ada'), (2, 'Brian');
INSERT INTO orders (id, customer_id, total) VALUES (10, 1, 25.5), (11, 1, 4.0), (12, 2, 99.9);
`

// ShopQuery is the SELECT the query builder produces for the shop scenario
const ShopQuery = "SELECT customers.id, customers.name, orders.total FROM customers " +
	"INNER JOIN orders ON customers.id = orders.customer_id"
