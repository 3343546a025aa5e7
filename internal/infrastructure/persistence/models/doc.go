// Package models contains the GORM persistence models of the lock store.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart.
//
//   - base.go: identity and version columns of aggregates
//   - customer_lock.go: customers and their lock state
//   - sales_invoice.go: sales invoices mirrored from accounting
package models
