// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free of ORM tags.
//
// Structure:
//   - base.go: shared id, timestamp and version columns
//   - purchasing.go: purchase orders, items, estimates and the totals scan row
//   - inventory.go: inventory records, movements and drift reports
package models
