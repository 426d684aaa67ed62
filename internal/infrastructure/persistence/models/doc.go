// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model has ToDomain/FromDomain mappers
// and repositories only ever read and write models.
package models
