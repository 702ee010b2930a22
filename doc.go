// Package main provides the entry point for the settings administration
// application. It runs a web server using the Fiber framework that lets
// operators read and update application settings through a REST API, with a
// full audit trail, point-in-time backups with preview and restore, and a
// JSON import/export pipeline with conflict resolution. The application uses
// gorm for data persistence against SQLite, MySQL or PostgreSQL.
package main
