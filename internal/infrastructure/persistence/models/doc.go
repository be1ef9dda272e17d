// Package models contains the GORM persistence models. Domain entities
// never carry gorm tags; every table has an explicit model here with
// ToDomain/FromDomain conversion so schema concerns stay out of the
// business core.
package models
